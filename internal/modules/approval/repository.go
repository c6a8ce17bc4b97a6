package approval

import (
	"context"

	"github.com/google/uuid"
)

// Repository applies review transitions. It is the only writer of the
// status column of stands and products and of the status_history table,
// which is never updated or deleted.
type Repository interface {
	// Apply reads the current status, checks CanTransition, updates the
	// entity only if its status is unchanged and appends the history row,
	// all in one transaction.
	Apply(ctx context.Context, t Transition) (*Decision, error)

	ListPending(ctx context.Context, kind EntityKind) ([]*PendingItem, error)
	History(ctx context.Context, kind EntityKind, id uuid.UUID) ([]*StatusHistory, error)
}
