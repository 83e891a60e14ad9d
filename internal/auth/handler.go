package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
)

// PasswordAuthenticator checks credentials and returns the account.
type PasswordAuthenticator interface {
	AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error)
}

type Handler struct {
	users  PasswordAuthenticator
	tokens *TokenService
	logger *zap.SugaredLogger
	debug  bool
}

func NewHandler(users PasswordAuthenticator, tokens *TokenService, logger *zap.SugaredLogger, debug bool) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger, debug: debug}
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Summary is the account view returned to the client.
type Summary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  Summary `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err, h.debug)
		return
	}
	u, err := h.users.AuthenticatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "email", req.Email, "err", err)
		httpx.WriteError(w, h.logger, err, h.debug)
		return
	}
	tok, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		httpx.WriteError(w, h.logger, apperr.Storage(err), h.debug)
		return
	}
	h.logger.Infow("login", "user_id", u.ID, "role", u.Role)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Token: tok,
		User:  Summary{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role},
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.From(r.Context())
	if !ok {
		httpx.WriteError(w, h.logger, apperr.Unauthenticated("Authentication required"), h.debug)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]Summary{
		"user": {ID: id.UserID, FullName: id.FullName, Email: id.Email, Role: id.Role},
	})
}

// Logout is an acknowledgement; tokens are discarded client-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
