package stand

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines market stand storage. Status is written on insert only;
// review decisions go through the approval module.
type Repository interface {
	Create(ctx context.Context, s *MarketStand) error
	GetByID(ctx context.Context, id uuid.UUID) (*MarketStand, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*MarketStand, error)
}
