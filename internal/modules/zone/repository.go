package zone

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines delivery zone storage.
type Repository interface {
	Create(ctx context.Context, z *DeliveryZone) error
	GetByID(ctx context.Context, id uuid.UUID) (*DeliveryZone, error)

	// ListByProducer returns the producer's zones ordered by name. With
	// activeOnly, zones soft-disabled via is_active=false are left out.
	ListByProducer(ctx context.Context, producerID uuid.UUID, activeOnly bool) ([]*DeliveryZone, error)

	// Update writes every mutable column of z, including moderation state.
	Update(ctx context.Context, z *DeliveryZone) error
}
