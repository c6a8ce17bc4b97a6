package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// Create persists a new order and its items atomically in a transaction.
	// A clashing order number is reported as a conflict.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByCustomer returns a customer's orders, newest first, without items.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)

	// UpdateStatus moves an order from one status to another. It fails with
	// a conflict if the order is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus, at time.Time) error

	DeliveryLister
}
