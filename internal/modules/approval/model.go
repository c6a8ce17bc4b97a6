package approval

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a market stand or product.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// validTransitions defines the review state machine. Both decisions are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// EntityKind names the kind of entity under review.
type EntityKind string

const (
	KindMarketStand EntityKind = "MARKET_STAND"
	KindProduct     EntityKind = "PRODUCT"
)

// ParseKind maps the URL segment ("stands", "products") to an EntityKind.
func ParseKind(segment string) (EntityKind, bool) {
	switch segment {
	case "stands":
		return KindMarketStand, true
	case "products":
		return KindProduct, true
	}
	return "", false
}

func (k EntityKind) table() string {
	if k == KindMarketStand {
		return "market_stands"
	}
	return "products"
}

func (k EntityKind) label() string {
	if k == KindMarketStand {
		return "market stand"
	}
	return "product"
}

// StatusHistory is one append-only audit row written by every transition.
type StatusHistory struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	EntityKind  EntityKind `json:"entity_kind" db:"entity_kind"`
	EntityID    uuid.UUID  `json:"entity_id" db:"entity_id"`
	OldStatus   Status     `json:"old_status" db:"old_status"`
	NewStatus   Status     `json:"new_status" db:"new_status"`
	ChangedByID uuid.UUID  `json:"changed_by_id" db:"changed_by_id"`
	Note        string     `json:"note" db:"note"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// PendingItem is a stand or product waiting for review.
type PendingItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Kind      EntityKind `json:"kind" db:"-"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	Status    Status     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Transition is a requested status change.
type Transition struct {
	Kind        EntityKind
	EntityID    uuid.UUID
	To          Status
	ChangedByID uuid.UUID
	Note        string
	At          time.Time
}

// Decision is the outcome of an applied transition.
type Decision struct {
	Entity  PendingItem   `json:"entity"`
	History StatusHistory `json:"history"`
}

// DecisionRequest is the admin payload for approve and reject.
type DecisionRequest struct {
	Note *string `json:"note"`
}
