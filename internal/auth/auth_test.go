package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

const secret = "0123456789abcdef0123456789abcdef"

type stubUsers map[string]*entity.User

func (s stubUsers) Get(_ context.Context, id string) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func TestTokenRoundTrip(t *testing.T) {
	ts, err := NewTokenService(secret, time.Hour)
	require.NoError(t, err)
	tok, err := ts.Issue("u-1", identity.RoleStaff)
	require.NoError(t, err)

	c, err := ts.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "staff", c.Role)

	_, err = ts.Verify(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	ts, err := NewTokenService(secret, time.Minute)
	require.NoError(t, err)
	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := ts.Issue("u-1", "admin")
	require.NoError(t, err)
	ts.now = time.Now
	_, err = ts.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewTokenServiceRejectsWeakSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecretKey)
	_, err = NewTokenService(secret, 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func gateFixture(t *testing.T) (*Gate, *TokenService) {
	ts, err := NewTokenService(secret, time.Hour)
	require.NoError(t, err)
	users := stubUsers{
		"admin-1": {ID: "admin-1", Role: identity.RoleAdmin, Status: entity.StatusActive},
		"staff-1": {ID: "staff-1", Role: identity.RoleStaff, Status: entity.StatusActive},
		"gone-1":  {ID: "gone-1", Role: identity.RoleStaff, Status: entity.StatusDisabled},
	}
	return NewGate(ts, users, zap.NewNop().Sugar()), ts
}

func serve(g *Gate, roles []string, token string) int {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := g.Authenticate(RequireRole(zap.NewNop().Sugar(), roles...)(ok))
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoleGate(t *testing.T) {
	g, ts := gateFixture(t)
	adminTok, _ := ts.Issue("admin-1", identity.RoleAdmin)
	staffTok, _ := ts.Issue("staff-1", identity.RoleStaff)
	disabledTok, _ := ts.Issue("gone-1", identity.RoleStaff)
	ghostTok, _ := ts.Issue("ghost", identity.RoleAdmin)

	adminOnly := []string{identity.RoleAdmin}
	assert.Equal(t, http.StatusUnauthorized, serve(g, adminOnly, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(g, adminOnly, "garbage"))
	assert.Equal(t, http.StatusUnauthorized, serve(g, adminOnly, ghostTok))
	assert.Equal(t, http.StatusUnauthorized, serve(g, adminOnly, disabledTok))
	assert.Equal(t, http.StatusForbidden, serve(g, adminOnly, staffTok))
	assert.Equal(t, http.StatusNoContent, serve(g, adminOnly, adminTok))

	staffOrAdmin := []string{identity.RoleStaff, identity.RoleAdmin}
	assert.Equal(t, http.StatusNoContent, serve(g, staffOrAdmin, staffTok))
}

func TestRoleFromStoreNotToken(t *testing.T) {
	g, ts := gateFixture(t)
	// a token claiming admin for a staff account is still treated as staff
	forged, _ := ts.Issue("staff-1", identity.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, serve(g, []string{identity.RoleAdmin}, forged))
}
