package stand

import (
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/google/uuid"
)

// MarketStand is a producer's pickup location. New stands wait for review.
type MarketStand struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OwnerID     uuid.UUID       `json:"owner_id" db:"owner_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Location    string          `json:"location" db:"location"`
	Latitude    float64         `json:"latitude" db:"latitude"`
	Longitude   float64         `json:"longitude" db:"longitude"`
	Status      approval.Status `json:"status" db:"status"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateStandRequest is the payload for a new stand.
type CreateStandRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}
