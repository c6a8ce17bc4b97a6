package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/zone"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ActiveDeliveryStatuses are the statuses a producer still has to fulfil.
var ActiveDeliveryStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusReady}

// validTransitions defines the allowed status state machine.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCompleted},
	StatusDelivered: {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next OrderStatus) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// OrderType is how the customer receives the order.
type OrderType string

const (
	TypePickup   OrderType = "PICKUP"
	TypeDelivery OrderType = "DELIVERY"
)

// Address is the delivery address stored as JSON on the order.
type Address zone.Address

func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *Address) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported address column type %T", src)
	}
	return json.Unmarshal(b, a)
}

// Order is a customer's order from a single producer. Money is integer cents.
type Order struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	OrderNumber      string       `json:"order_number" db:"order_number"`
	CustomerID       uuid.UUID    `json:"customer_id" db:"customer_id"`
	ProducerID       uuid.UUID    `json:"producer_id" db:"producer_id"`
	Status           OrderStatus  `json:"status" db:"status"`
	Type             OrderType    `json:"type" db:"type"`
	DeliveryDate     *time.Time   `json:"delivery_date" db:"delivery_date"`
	DeliveryZoneID   *uuid.UUID   `json:"delivery_zone_id" db:"delivery_zone_id"`
	DeliveryAddress  *Address     `json:"delivery_address" db:"delivery_address"`
	SubtotalCents    int64        `json:"subtotal_cents" db:"subtotal_cents"`
	TaxCents         int64        `json:"tax_cents" db:"tax_cents"`
	DeliveryFeeCents int64        `json:"delivery_fee_cents" db:"delivery_fee_cents"`
	TotalCents       int64        `json:"total_cents" db:"total_cents"`
	Notes            string       `json:"notes,omitempty" db:"notes"`
	Items            []*OrderItem `json:"items" db:"-"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// OrderItem is a single line item within an order.
type OrderItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrderID        uuid.UUID `json:"order_id" db:"order_id"`
	ProductID      uuid.UUID `json:"product_id" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents" db:"line_total_cents"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ZoneOrders is one delivery zone's orders for a weekday.
type ZoneOrders struct {
	ZoneID   uuid.UUID       `json:"zone_id"`
	ZoneName string          `json:"zone_name"`
	Orders   []*OrderSummary `json:"orders"`
}

// OrderSummary is the fulfillment view of an active delivery order.
type OrderSummary struct {
	ID              uuid.UUID      `json:"id"`
	OrderNumber     string         `json:"order_number"`
	Status          OrderStatus    `json:"status"`
	DeliveryDate    time.Time      `json:"delivery_date"`
	DeliveryZoneID  uuid.UUID      `json:"delivery_zone_id"`
	CustomerName    string         `json:"customer_name"`
	DeliveryAddress *Address       `json:"delivery_address"`
	TotalCents      int64          `json:"total_cents"`
	Items           []*ItemSummary `json:"items"`
}

// ItemSummary is a line item with its product's first image, or nil.
type ItemSummary struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Image       *string   `json:"image"`
}

// CartItem is one requested product and quantity at checkout.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	Type            OrderType  `json:"type"`
	Items           []CartItem `json:"items"`
	DeliveryZoneID  *uuid.UUID `json:"delivery_zone_id"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	DeliveryAddress *Address   `json:"delivery_address"`
	Notes           string     `json:"notes"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}
