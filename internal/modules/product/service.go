package product

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/listingcache"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/stand"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

const (
	defaultRadiusKm = 25.0
	maxRadiusKm     = 200.0
	earthRadiusKm   = 6371.0
)

// Service defines product management, delivery plans and the public listing.
type Service interface {
	CreateProduct(ctx context.Context, caller *auth.Caller, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	ListMine(ctx context.Context, caller *auth.Caller) ([]*Product, error)
	ListNearby(ctx context.Context, q NearbyQuery) ([]*Listing, error)

	// SetRecurringSchedule replaces the plan with a weekly schedule, clearing
	// any one-time dates.
	SetRecurringSchedule(ctx context.Context, caller *auth.Caller, id uuid.UUID, schedule Schedule) (*Product, error)

	// SetOneTimeDates replaces the plan with explicit dates, clearing any
	// weekly schedule.
	SetOneTimeDates(ctx context.Context, caller *auth.Caller, id uuid.UUID, dates []time.Time) (*Product, error)

	// UpdateDayInventory changes one enabled day of the weekly schedule and
	// leaves the other days untouched. Fails with ErrDayNotEnabled otherwise.
	UpdateDayInventory(ctx context.Context, caller *auth.Caller, id uuid.UUID, day Weekday, inventory int) (*Product, error)

	// ClearSchedule removes any plan. Clearing twice is a no-op.
	ClearSchedule(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Product, error)
}

// StandLookup resolves the stand a product is listed at.
type StandLookup interface {
	GetStand(ctx context.Context, id uuid.UUID) (*stand.MarketStand, error)
}

type service struct {
	repo   Repository
	stands StandLookup
	cache  *listingcache.Cache[[]*Listing]
	now    func() time.Time
}

// NewService creates a product service. cache is shared with the approval
// workflow, which drops it after every decision.
func NewService(repo Repository, stands StandLookup, cache *listingcache.Cache[[]*Listing]) Service {
	return &service{repo: repo, stands: stands, cache: cache, now: time.Now}
}

func (s *service) CreateProduct(ctx context.Context, caller *auth.Caller, req CreateProductRequest) (*Product, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if caller.Role != user.RoleProducer {
		return nil, apperr.Forbidden("only producers can create products")
	}

	fields := map[string]string{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fields["name"] = "is required"
	}
	if req.PriceCents < 0 {
		fields["price_cents"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid product", fields)
	}
	if req.StandID != nil {
		st, err := s.stands.GetStand(ctx, *req.StandID)
		if err != nil {
			return nil, err
		}
		if !caller.Owns(st.OwnerID) {
			return nil, apperr.Forbidden("you do not own this market stand")
		}
	}

	now := s.now()
	p := &Product{
		ID:          uuid.New(),
		ProducerID:  caller.ID,
		StandID:     req.StandID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Images:      cleanImages(req.Images),
		Status:      approval.StatusPending,
		IsActive:    true,
		Plan:        NoPlan{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		log.Printf("product: create for producer=%s failed: %v", caller.ID, err)
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProduct(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		if p.Name == "" {
			return nil, apperr.ValidationFields("invalid product", map[string]string{"name": "is required"})
		}
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, apperr.ValidationFields("invalid product", map[string]string{"price_cents": "must not be negative"})
		}
		p.PriceCents = *req.PriceCents
	}
	if req.Images != nil {
		p.Images = cleanImages(*req.Images)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		log.Printf("product: update product=%s by caller=%s failed: %v", id, caller.ID, err)
		return nil, err
	}
	s.cache.InvalidateAll()
	return p, nil
}

func (s *service) ListMine(ctx context.Context, caller *auth.Caller) ([]*Product, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.repo.ListByProducer(ctx, caller.ID)
}

func (s *service) ListNearby(ctx context.Context, q NearbyQuery) ([]*Listing, error) {
	if q.RadiusKm == 0 {
		q.RadiusKm = defaultRadiusKm
	}
	fields := map[string]string{}
	if !inRange(q.Lat, -90, 90) {
		fields["lat"] = "must be between -90 and 90"
	}
	if !inRange(q.Lng, -180, 180) {
		fields["lng"] = "must be between -180 and 180"
	}
	if !inRange(q.RadiusKm, 0, maxRadiusKm) {
		fields["radius_km"] = fmt.Sprintf("must be between 0 and %.0f", maxRadiusKm)
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid location", fields)
	}

	key := fmt.Sprintf("%s|%.1f", listingcache.KeyFor(q.Lat, q.Lng), q.RadiusKm)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	candidates, err := s.repo.ListInBounds(ctx, boundsAround(q))
	if err != nil {
		return nil, err
	}
	out := make([]*Listing, 0, len(candidates))
	for _, l := range candidates {
		l.DistanceKm = math.Round(haversineKm(q.Lat, q.Lng, l.Latitude, l.Longitude)*10) / 10
		if l.DistanceKm <= q.RadiusKm {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })

	s.cache.Put(key, out)
	return out, nil
}

func (s *service) SetRecurringSchedule(ctx context.Context, caller *auth.Caller, id uuid.UUID, schedule Schedule) (*Product, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.savePlan(ctx, caller, p, RecurringPlan{Schedule: schedule})
}

func (s *service) SetOneTimeDates(ctx context.Context, caller *auth.Caller, id uuid.UUID, dates []time.Time) (*Product, error) {
	if len(dates) == 0 {
		return nil, apperr.ValidationFields("invalid delivery dates", map[string]string{"delivery_dates": "at least one date is required"})
	}
	for _, d := range dates {
		if d.IsZero() {
			return nil, apperr.ValidationFields("invalid delivery dates", map[string]string{"delivery_dates": "must be valid timestamps"})
		}
	}
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.savePlan(ctx, caller, p, OneTimePlan{Dates: normaliseDates(dates)})
}

func (s *service) UpdateDayInventory(ctx context.Context, caller *auth.Caller, id uuid.UUID, day Weekday, inventory int) (*Product, error) {
	if !day.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("%q is not a weekday name", day))
	}
	if inventory < 0 {
		return nil, apperr.ValidationFields("invalid inventory", map[string]string{"inventory": "must not be negative"})
	}
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	recurring, ok := p.Plan.(RecurringPlan)
	if !ok {
		return nil, ErrDayNotEnabled
	}
	schedule, err := recurring.Schedule.WithInventory(day, inventory)
	if err != nil {
		return nil, err
	}
	return s.savePlan(ctx, caller, p, RecurringPlan{Schedule: schedule})
}

func (s *service) ClearSchedule(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Product, error) {
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.savePlan(ctx, caller, p, NoPlan{})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *service) owned(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Product, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(p.ProducerID) {
		return nil, apperr.Forbidden("you do not own this product")
	}
	return p, nil
}

func (s *service) savePlan(ctx context.Context, caller *auth.Caller, p *Product, plan DeliveryPlan) (*Product, error) {
	at := s.now()
	if err := s.repo.SavePlan(ctx, p.ID, plan, at); err != nil {
		log.Printf("product: save %s plan product=%s by caller=%s failed: %v", plan.Kind(), p.ID, caller.ID, err)
		return nil, err
	}
	p.Plan = plan
	p.UpdatedAt = at
	s.cache.InvalidateAll()
	return p, nil
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func boundsAround(q NearbyQuery) Bounds {
	dLat := q.RadiusKm / 111.0
	dLng := q.RadiusKm / (111.0 * math.Max(math.Cos(q.Lat*math.Pi/180), 0.01))
	return Bounds{
		MinLat: math.Max(q.Lat-dLat, -90),
		MaxLat: math.Min(q.Lat+dLat, 90),
		MinLng: math.Max(q.Lng-dLng, -180),
		MaxLng: math.Min(q.Lng+dLng, 180),
	}
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// inRange reports whether v is a number within [lo, hi]. NaN is never in range.
func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
