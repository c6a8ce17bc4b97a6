package issue

import (
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// errOpenIssue is returned when an order already has an unresolved issue.
var errOpenIssue = apperr.Conflict("this order already has an open issue")

// Status is where an order issue sits in review.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusInvestigating Status = "INVESTIGATING"
	StatusResolved      Status = "RESOLVED"
	StatusRefunded      Status = "REFUNDED"
)

// OpenStatuses are the statuses that block a second report on the same order.
var OpenStatuses = []Status{StatusPending, StatusInvestigating}

var validTransitions = map[Status][]Status{
	StatusPending:       {StatusInvestigating, StatusResolved, StatusRefunded},
	StatusInvestigating: {StatusResolved, StatusRefunded},
	StatusResolved:      {},
	StatusRefunded:      {},
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

// Closes reports whether moving to s settles the issue.
func (s Status) Closes() bool { return s == StatusResolved || s == StatusRefunded }

// Type classifies what went wrong with an order.
type Type string

const (
	TypeNotDelivered Type = "NOT_DELIVERED"
	TypeWrongItems   Type = "WRONG_ITEMS"
	TypeDamaged      Type = "DAMAGED"
	TypePoorQuality  Type = "POOR_QUALITY"
	TypeLate         Type = "LATE"
	TypeOther        Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNotDelivered, TypeWrongItems, TypeDamaged, TypePoorQuality, TypeLate, TypeOther:
		return true
	}
	return false
}

// OrderIssue is a customer's complaint about one order.
type OrderIssue struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrderID        uuid.UUID  `json:"order_id" db:"order_id"`
	ReporterID     uuid.UUID  `json:"reporter_id" db:"reporter_id"`
	IssueType      Type       `json:"issue_type" db:"issue_type"`
	Description    string     `json:"description" db:"description"`
	Status         Status     `json:"status" db:"status"`
	ResolutionNote string     `json:"resolution_note,omitempty" db:"resolution_note"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedByID   *uuid.UUID `json:"resolved_by_id,omitempty" db:"resolved_by_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ReportRequest is the payload a customer sends to open an issue.
type ReportRequest struct {
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
}

// UpdateStatusRequest is the admin payload for moving an issue along.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}
