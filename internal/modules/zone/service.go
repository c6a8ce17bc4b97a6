package zone

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/product"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// Service defines delivery zone management and checkout pricing.
type Service interface {
	CreateZone(ctx context.Context, caller *auth.Caller, req CreateZoneRequest) (*DeliveryZone, error)
	UpdateZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateZoneRequest) (*DeliveryZone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*DeliveryZone, error)

	// ListProducerZones returns all of a producer's zones, disabled ones
	// included. Only the producer or an admin may list them.
	ListProducerZones(ctx context.Context, caller *auth.Caller, producerID uuid.UUID) ([]*DeliveryZone, error)

	// ListActiveZonesByProducer returns the zones with is_active set.
	ListActiveZonesByProducer(ctx context.Context, producerID uuid.UUID) ([]*DeliveryZone, error)

	// DeactivateZone soft-disables a zone. Zones are never deleted.
	DeactivateZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error)

	// Admin moderation.
	FlagZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, reason string) (*DeliveryZone, error)
	UnflagZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error)
	SuspendZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, reason string) (*DeliveryZone, error)
	UnsuspendZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error)

	// Quote previews membership, minimum and fee for a checkout.
	Quote(ctx context.Context, id uuid.UUID, req QuoteRequest) (*Quote, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new delivery zone service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateZone(ctx context.Context, caller *auth.Caller, req CreateZoneRequest) (*DeliveryZone, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if caller.Role != user.RoleProducer {
		return nil, apperr.Forbidden("only producers can create delivery zones")
	}

	now := s.now()
	z := &DeliveryZone{
		ID:                         uuid.New(),
		ProducerID:                 caller.ID,
		Name:                       strings.TrimSpace(req.Name),
		Description:                strings.TrimSpace(req.Description),
		ZipCodes:                   cleanList(req.ZipCodes),
		Cities:                     cleanList(req.Cities),
		States:                     cleanList(req.States),
		DeliveryDays:               cleanList(req.DeliveryDays),
		DeliveryFeeCents:           req.DeliveryFeeCents,
		FreeDeliveryThresholdCents: req.FreeDeliveryThresholdCents,
		MinimumOrderCents:          req.MinimumOrderCents,
		IsActive:                   true,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := validate(z); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, z); err != nil {
		log.Printf("zone: create for producer=%s failed: %v", caller.ID, err)
		return nil, err
	}
	return z, nil
}

func (s *service) UpdateZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateZoneRequest) (*DeliveryZone, error) {
	z, err := s.ownedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		z.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		z.Description = strings.TrimSpace(*req.Description)
	}
	if req.ZipCodes != nil {
		z.ZipCodes = cleanList(*req.ZipCodes)
	}
	if req.Cities != nil {
		z.Cities = cleanList(*req.Cities)
	}
	if req.States != nil {
		z.States = cleanList(*req.States)
	}
	if req.DeliveryDays != nil {
		z.DeliveryDays = cleanList(*req.DeliveryDays)
	}
	if req.DeliveryFeeCents != nil {
		z.DeliveryFeeCents = *req.DeliveryFeeCents
	}
	if req.ClearFreeDeliveryThreshold {
		z.FreeDeliveryThresholdCents = nil
	} else if req.FreeDeliveryThresholdCents != nil {
		z.FreeDeliveryThresholdCents = req.FreeDeliveryThresholdCents
	}
	if req.ClearMinimumOrder {
		z.MinimumOrderCents = nil
	} else if req.MinimumOrderCents != nil {
		z.MinimumOrderCents = req.MinimumOrderCents
	}

	if err := validate(z); err != nil {
		return nil, err
	}
	return s.save(ctx, caller, z)
}

func (s *service) GetZone(ctx context.Context, id uuid.UUID) (*DeliveryZone, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducerZones(ctx context.Context, caller *auth.Caller, producerID uuid.UUID) ([]*DeliveryZone, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !caller.Owns(producerID) && !caller.IsAdmin() {
		return nil, apperr.Forbidden("not your delivery zones")
	}
	return s.repo.ListByProducer(ctx, producerID, false)
}

func (s *service) ListActiveZonesByProducer(ctx context.Context, producerID uuid.UUID) ([]*DeliveryZone, error) {
	return s.repo.ListByProducer(ctx, producerID, true)
}

func (s *service) DeactivateZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error) {
	z, err := s.ownedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	z.IsActive = false
	return s.save(ctx, caller, z)
}

func (s *service) FlagZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, reason string) (*DeliveryZone, error) {
	z, err := s.moderatedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a reason is required to flag a zone")
	}
	now := s.now()
	z.IsFlagged = true
	z.FlagReason = &reason
	z.FlaggedAt = &now
	z.FlaggedByID = &caller.ID
	return s.save(ctx, caller, z)
}

func (s *service) UnflagZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error) {
	z, err := s.moderatedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	z.IsFlagged = false
	z.FlagReason, z.FlaggedAt, z.FlaggedByID = nil, nil, nil
	return s.save(ctx, caller, z)
}

func (s *service) SuspendZone(ctx context.Context, caller *auth.Caller, id uuid.UUID, reason string) (*DeliveryZone, error) {
	z, err := s.moderatedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a reason is required to suspend a zone")
	}
	now := s.now()
	z.IsSuspended = true
	z.SuspensionReason = &reason
	z.SuspendedAt = &now
	z.SuspendedByID = &caller.ID
	return s.save(ctx, caller, z)
}

func (s *service) UnsuspendZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error) {
	z, err := s.moderatedZone(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	z.IsSuspended = false
	z.SuspensionReason, z.SuspendedAt, z.SuspendedByID = nil, nil, nil
	return s.save(ctx, caller, z)
}

func (s *service) Quote(ctx context.Context, id uuid.UUID, req QuoteRequest) (*Quote, error) {
	if req.SubtotalCents < 0 {
		return nil, apperr.Validation("subtotal_cents must not be negative")
	}
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !z.AcceptsOrders() {
		return nil, apperr.Conflict("delivery zone is not accepting orders")
	}
	return QuoteFor(z, req.Address, req.SubtotalCents), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *service) ownedZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(z.ProducerID) {
		return nil, apperr.Forbidden("you do not own this delivery zone")
	}
	return z, nil
}

func (s *service) moderatedZone(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*DeliveryZone, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("admin role required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) save(ctx context.Context, caller *auth.Caller, z *DeliveryZone) (*DeliveryZone, error) {
	z.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, z); err != nil {
		log.Printf("zone: update zone=%s by caller=%s failed: %v", z.ID, caller.ID, err)
		return nil, err
	}
	return z, nil
}

func validate(z *DeliveryZone) error {
	fields := map[string]string{}
	if z.Name == "" {
		fields["name"] = "is required"
	}
	if z.DeliveryFeeCents < 0 {
		fields["delivery_fee_cents"] = "must not be negative"
	}
	if z.FreeDeliveryThresholdCents != nil && *z.FreeDeliveryThresholdCents < 0 {
		fields["free_delivery_threshold_cents"] = "must not be negative"
	}
	if z.MinimumOrderCents != nil && *z.MinimumOrderCents < 0 {
		fields["minimum_order_cents"] = "must not be negative"
	}
	if len(z.ZipCodes)+len(z.Cities)+len(z.States) == 0 {
		fields["coverage"] = "at least one zip code, city or state is required"
	}
	for _, d := range z.DeliveryDays {
		if !product.Weekday(d).Valid() {
			fields["delivery_days"] = "must be weekday names such as Monday"
			break
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid delivery zone", fields)
	}
	return nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
