package stand

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// Service defines market stand registration.
type Service interface {
	CreateStand(ctx context.Context, caller *auth.Caller, req CreateStandRequest) (*MarketStand, error)
	GetStand(ctx context.Context, id uuid.UUID) (*MarketStand, error)
	ListMine(ctx context.Context, caller *auth.Caller) ([]*MarketStand, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service { return &service{repo: repo, now: time.Now} }

func (s *service) CreateStand(ctx context.Context, caller *auth.Caller, req CreateStandRequest) (*MarketStand, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if caller.Role != user.RoleProducer {
		return nil, apperr.Forbidden("only producers can register market stands")
	}

	fields := map[string]string{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fields["name"] = "is required"
	}
	if req.Latitude == nil || !inRange(*req.Latitude, -90, 90) {
		fields["latitude"] = "must be between -90 and 90"
	}
	if req.Longitude == nil || !inRange(*req.Longitude, -180, 180) {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid market stand", fields)
	}

	now := s.now()
	st := &MarketStand{
		ID:          uuid.New(),
		OwnerID:     caller.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Status:      approval.StatusPending,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		log.Printf("stand: create for owner=%s failed: %v", caller.ID, err)
		return nil, err
	}
	return st, nil
}

func (s *service) GetStand(ctx context.Context, id uuid.UUID) (*MarketStand, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListMine(ctx context.Context, caller *auth.Caller) ([]*MarketStand, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.repo.ListByOwner(ctx, caller.ID)
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
