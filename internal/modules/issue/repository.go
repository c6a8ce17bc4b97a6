package issue

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage for order issues.
type Repository interface {
	// Create inserts a new issue. A second open issue on the same order is
	// reported as a conflict.
	Create(ctx context.Context, i *OrderIssue) error
	GetByID(ctx context.Context, id uuid.UUID) (*OrderIssue, error)
	HasOpen(ctx context.Context, orderID uuid.UUID) (bool, error)

	// Update saves status and resolution fields, provided the stored status
	// is still from.
	Update(ctx context.Context, i *OrderIssue, from Status) error

	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderIssue, error)
	ListOpen(ctx context.Context) ([]*OrderIssue, error)
}
