package zone

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DeliveryZone is an area a producer delivers to, with its pricing rules.
// Money fields are integer cents.
type DeliveryZone struct {
	ID                         uuid.UUID      `json:"id" db:"id"`
	ProducerID                 uuid.UUID      `json:"producer_id" db:"producer_id"`
	Name                       string         `json:"name" db:"name"`
	Description                string         `json:"description,omitempty" db:"description"`
	ZipCodes                   pq.StringArray `json:"zip_codes" db:"zip_codes"`
	Cities                     pq.StringArray `json:"cities" db:"cities"`
	States                     pq.StringArray `json:"states" db:"states"`
	DeliveryDays               pq.StringArray `json:"delivery_days" db:"delivery_days"`
	DeliveryFeeCents           int64          `json:"delivery_fee_cents" db:"delivery_fee_cents"`
	FreeDeliveryThresholdCents *int64         `json:"free_delivery_threshold_cents" db:"free_delivery_threshold_cents"`
	MinimumOrderCents          *int64         `json:"minimum_order_cents" db:"minimum_order_cents"`
	IsActive                   bool           `json:"is_active" db:"is_active"`
	IsSuspended                bool           `json:"is_suspended" db:"is_suspended"`
	SuspensionReason           *string        `json:"suspension_reason,omitempty" db:"suspension_reason"`
	SuspendedAt                *time.Time     `json:"suspended_at,omitempty" db:"suspended_at"`
	SuspendedByID              *uuid.UUID     `json:"suspended_by_id,omitempty" db:"suspended_by_id"`
	IsFlagged                  bool           `json:"is_flagged" db:"is_flagged"`
	FlagReason                 *string        `json:"flag_reason,omitempty" db:"flag_reason"`
	FlaggedAt                  *time.Time     `json:"flagged_at,omitempty" db:"flagged_at"`
	FlaggedByID                *uuid.UUID     `json:"flagged_by_id,omitempty" db:"flagged_by_id"`
	CreatedAt                  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at" db:"updated_at"`
}

// AcceptsOrders reports whether new orders may be placed in the zone.
func (z *DeliveryZone) AcceptsOrders() bool {
	return z.IsActive && !z.IsSuspended
}

// Address is a shipping address as entered at checkout.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Quote is the checkout preview for an address and subtotal.
type Quote struct {
	ZoneID                     uuid.UUID `json:"zone_id"`
	InZone                     bool      `json:"in_zone"`
	MeetsMinimum               bool      `json:"meets_minimum"`
	DeliveryFeeCents           int64     `json:"delivery_fee_cents"`
	MinimumOrderCents          *int64    `json:"minimum_order_cents"`
	FreeDeliveryThresholdCents *int64    `json:"free_delivery_threshold_cents"`
	DeliveryDays               []string  `json:"delivery_days"`
}

// CreateZoneRequest is the payload for a new zone.
type CreateZoneRequest struct {
	Name                       string   `json:"name"`
	Description                string   `json:"description"`
	ZipCodes                   []string `json:"zip_codes"`
	Cities                     []string `json:"cities"`
	States                     []string `json:"states"`
	DeliveryDays               []string `json:"delivery_days"`
	DeliveryFeeCents           int64    `json:"delivery_fee_cents"`
	FreeDeliveryThresholdCents *int64   `json:"free_delivery_threshold_cents"`
	MinimumOrderCents          *int64   `json:"minimum_order_cents"`
}

// UpdateZoneRequest changes only the fields that are present.
type UpdateZoneRequest struct {
	Name                       *string   `json:"name"`
	Description                *string   `json:"description"`
	ZipCodes                   *[]string `json:"zip_codes"`
	Cities                     *[]string `json:"cities"`
	States                     *[]string `json:"states"`
	DeliveryDays               *[]string `json:"delivery_days"`
	DeliveryFeeCents           *int64    `json:"delivery_fee_cents"`
	FreeDeliveryThresholdCents *int64    `json:"free_delivery_threshold_cents"`
	MinimumOrderCents          *int64    `json:"minimum_order_cents"`
	ClearFreeDeliveryThreshold bool      `json:"clear_free_delivery_threshold"`
	ClearMinimumOrder          bool      `json:"clear_minimum_order"`
}

// QuoteRequest asks whether an address is served and what delivery costs.
type QuoteRequest struct {
	Address       Address `json:"address"`
	SubtotalCents int64   `json:"subtotal_cents"`
}

// ModerationRequest carries an admin's reason for flagging or suspending.
type ModerationRequest struct {
	Reason string `json:"reason"`
}
