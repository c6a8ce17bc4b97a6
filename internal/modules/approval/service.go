package approval

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// DefaultApproveNote is recorded when an admin approves without a note.
const DefaultApproveNote = "Approved by admin"

// Invalidator drops cached listings that may show a reviewed entity.
type Invalidator interface {
	InvalidateAll()
}

// Notifier tells the owner about a decision. Failures are logged only.
type Notifier interface {
	Notify(ctx context.Context, d *Decision) error
}

// Service defines the admin review workflow for stands and products.
type Service interface {
	Approve(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, note string) (*Decision, error)

	// Reject requires a note that is not blank after trimming. Rejecting a
	// market stand also deactivates it.
	Reject(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, note string) (*Decision, error)

	ListPending(ctx context.Context, caller *auth.Caller, kind EntityKind) ([]*PendingItem, error)
	History(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID) ([]*StatusHistory, error)
}

type service struct {
	repo     Repository
	cache    Invalidator
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, cache Invalidator, notifier Notifier) Service {
	return &service{repo: repo, cache: cache, notifier: notifier, now: time.Now}
}

func (s *service) Approve(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, note string) (*Decision, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultApproveNote
	}
	return s.decide(ctx, caller, kind, id, StatusApproved, note)
}

func (s *service) Reject(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, note string) (*Decision, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.ValidationFields("a rejection note is required", map[string]string{"note": "is required"})
	}
	return s.decide(ctx, caller, kind, id, StatusRejected, note)
}

func (s *service) ListPending(ctx context.Context, caller *auth.Caller, kind EntityKind) ([]*PendingItem, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx, kind)
}

func (s *service) History(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID) ([]*StatusHistory, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, kind, id)
}

func (s *service) decide(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, to Status, note string) (*Decision, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	d, err := s.repo.Apply(ctx, Transition{
		Kind:        kind,
		EntityID:    id,
		To:          to,
		ChangedByID: caller.ID,
		Note:        note,
		At:          s.now(),
	})
	if err != nil {
		log.Printf("approval: %s %s=%s by admin=%s failed: %v", to, kind, id, caller.ID, err)
		return nil, err
	}
	log.Printf("approval: %s=%s %s -> %s by admin=%s", kind, id, d.History.OldStatus, to, caller.ID)

	s.cache.InvalidateAll()
	if err := s.notifier.Notify(ctx, d); err != nil {
		log.Printf("approval: notify owner=%s of %s=%s failed: %v", d.Entity.OwnerID, kind, id, err)
	}
	return d, nil
}

func requireAdmin(caller *auth.Caller) error {
	if caller == nil {
		return apperr.Unauthorized("authentication required")
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}
