package auth

import (
	"context"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/google/uuid"
)

// Caller is the identity resolved for the current request.
type Caller struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

// IsAdmin reports whether the caller holds an admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && user.HasAdminPrivilege(c.Role)
}

// Owns reports whether the caller is the owner with the given id.
func (c *Caller) Owns(ownerID uuid.UUID) bool {
	return c != nil && c.ID == ownerID
}

// Service resolves bearer tokens into callers.
type Service interface {
	Resolve(ctx context.Context, token string) (*Caller, error)
}

type callerKey struct{}

// WithCaller returns a context carrying c.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller attached by Authenticate, or nil.
func CallerFrom(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey{}).(*Caller)
	return c
}
