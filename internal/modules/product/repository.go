package product

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines product storage. Status is written on insert only;
// review decisions go through the approval module.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*Product, error)

	// Update writes the descriptive fields and is_active. It never touches
	// status or the delivery plan.
	Update(ctx context.Context, p *Product) error

	// SavePlan writes both delivery columns in one statement.
	SavePlan(ctx context.Context, id uuid.UUID, plan DeliveryPlan, at time.Time) error

	// ListInBounds returns approved, active products at approved, active
	// stands whose coordinates fall inside b.
	ListInBounds(ctx context.Context, b Bounds) ([]*Listing, error)
}
