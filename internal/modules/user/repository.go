package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user profile storage.
type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
