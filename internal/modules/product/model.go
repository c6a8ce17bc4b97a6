package product

import (
	"encoding/json"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a producer's listing. Prices are integer cents.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	ProducerID  uuid.UUID       `json:"producer_id"`
	StandID     *uuid.UUID      `json:"stand_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Images      []string        `json:"images"`
	Status      approval.Status `json:"status"`
	IsActive    bool            `json:"is_active"`
	Plan        DeliveryPlan    `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FirstImage returns the first image URL, or nil when there are none.
func (p *Product) FirstImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// MarshalJSON renders the plan as the delivery_schedule/delivery_dates pair.
func (p *Product) MarshalJSON() ([]byte, error) {
	type plain Product
	plan := p.Plan
	if plan == nil {
		plan = NoPlan{}
	}
	schedule, dates := plan.columns()
	return json.Marshal(struct {
		*plain
		DeliveryPlan     string      `json:"delivery_plan"`
		DeliverySchedule Schedule    `json:"delivery_schedule"`
		DeliveryDates    []time.Time `json:"delivery_dates"`
	}{(*plain)(p), plan.Kind(), schedule, dates})
}

// productRow is the products table shape.
type productRow struct {
	ID               uuid.UUID       `db:"id"`
	OwnerID          uuid.UUID       `db:"owner_id"`
	StandID          *uuid.UUID      `db:"stand_id"`
	Name             string          `db:"name"`
	Description      string          `db:"description"`
	PriceCents       int64           `db:"price_cents"`
	Images           pq.StringArray  `db:"images"`
	Status           approval.Status `db:"status"`
	IsActive         bool            `db:"is_active"`
	DeliverySchedule Schedule        `db:"delivery_schedule"`
	DeliveryDates    DateList        `db:"delivery_dates"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *productRow) product() *Product {
	images := []string(r.Images)
	if images == nil {
		images = []string{}
	}
	return &Product{
		ID:          r.ID,
		ProducerID:  r.OwnerID,
		StandID:     r.StandID,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Images:      images,
		Status:      r.Status,
		IsActive:    r.IsActive,
		Plan:        planFromColumns(r.DeliverySchedule, r.DeliveryDates),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func rowFor(p *Product) *productRow {
	plan := p.Plan
	if plan == nil {
		plan = NoPlan{}
	}
	schedule, dates := plan.columns()
	return &productRow{
		ID:               p.ID,
		OwnerID:          p.ProducerID,
		StandID:          p.StandID,
		Name:             p.Name,
		Description:      p.Description,
		PriceCents:       p.PriceCents,
		Images:           pq.StringArray(p.Images),
		Status:           p.Status,
		IsActive:         p.IsActive,
		DeliverySchedule: schedule,
		DeliveryDates:    dates,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// Listing is a product shown on the public nearby page.
type Listing struct {
	Product    *Product  `json:"product"`
	StandID    uuid.UUID `json:"stand_id"`
	StandName  string    `json:"stand_name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DistanceKm float64   `json:"distance_km"`
}

type listingRow struct {
	productRow
	StandName string  `db:"stand_name"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
}

// Bounds is a latitude/longitude box.
type Bounds struct {
	MinLat, MaxLat, MinLng, MaxLng float64
}

// NearbyQuery locates listings around a point.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// CreateProductRequest is the payload for a new product.
type CreateProductRequest struct {
	StandID     *uuid.UUID `json:"stand_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PriceCents  int64      `json:"price_cents"`
	Images      []string   `json:"images"`
}

// UpdateProductRequest changes only the fields that are present.
type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"price_cents"`
	Images      *[]string `json:"images"`
	IsActive    *bool     `json:"is_active"`
}

// ScheduleRequest replaces the plan with a recurring schedule.
type ScheduleRequest struct {
	Schedule Schedule `json:"delivery_schedule"`
}

// DatesRequest replaces the plan with one-time dates.
type DatesRequest struct {
	Dates []time.Time `json:"delivery_dates"`
}

// InventoryRequest sets one day's inventory.
type InventoryRequest struct {
	Inventory *int `json:"inventory"`
}
