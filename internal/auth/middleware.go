package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	Get(ctx context.Context, id string) (*entity.User, error)
}

// Gate resolves the caller identity and enforces roles.
type Gate struct {
	tokens *TokenService
	users  UserLookup
	logger *zap.SugaredLogger
}

func NewGate(tokens *TokenService, users UserLookup, logger *zap.SugaredLogger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Resolve verifies the bearer token and loads an active account.
func (g *Gate) Resolve(r *http.Request) (identity.Identity, error) {
	raw := bearer(r)
	if raw == "" {
		return identity.Identity{}, apperr.Unauthenticated("Authentication required")
	}
	claims, err := g.tokens.Verify(raw)
	if err != nil {
		if err == ErrExpiredToken {
			return identity.Identity{}, apperr.Unauthenticated("Token expired")
		}
		return identity.Identity{}, apperr.Unauthenticated("Invalid token")
	}
	u, err := g.users.Get(r.Context(), claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return identity.Identity{}, apperr.Unauthenticated("Invalid token")
		}
		return identity.Identity{}, err
	}
	if u.Status != entity.StatusActive {
		return identity.Identity{}, apperr.Unauthenticated("Account is disabled")
	}
	return identity.Identity{UserID: u.ID, Role: u.Role, FullName: u.FullName, Email: u.Email}, nil
}

// Authenticate rejects requests without a valid bearer token.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Resolve(r)
		if err != nil {
			httpx.WriteError(w, g.logger, err, false)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.With(r.Context(), id)))
	})
}

// RequireRole must run after Authenticate. A caller outside roles gets Forbidden.
func RequireRole(logger *zap.SugaredLogger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.From(r.Context())
			if !ok {
				httpx.WriteError(w, logger, apperr.Unauthenticated("Authentication required"), false)
				return
			}
			if !slices.Contains(roles, id.Role) {
				httpx.WriteError(w, logger, apperr.Forbidden("Insufficient permissions"), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
