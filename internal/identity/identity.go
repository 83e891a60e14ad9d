// Package identity carries the authenticated caller through a request context.
package identity

import "context"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Identity is the verified caller of a protected operation.
type Identity struct {
	UserID   string
	Role     string
	FullName string
	Email    string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type ctxKey struct{}

func With(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the caller stored by the authentication middleware.
func From(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
