package issue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/order"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// Service defines order issue reporting and admin review.
type Service interface {
	// Report opens an issue on the caller's own order.
	Report(ctx context.Context, caller *auth.Caller, orderID uuid.UUID, req ReportRequest) (*OrderIssue, error)

	// UpdateStatus moves an issue along its review state machine. Admin only.
	UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateStatusRequest) (*OrderIssue, error)

	ListForOrder(ctx context.Context, caller *auth.Caller, orderID uuid.UUID) ([]*OrderIssue, error)
	ListOpen(ctx context.Context, caller *auth.Caller) ([]*OrderIssue, error)
}

// Orders loads the order an issue is about.
type Orders interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type service struct {
	repo   Repository
	orders Orders
	now    func() time.Time
}

func NewService(repo Repository, orders Orders) Service {
	return &service{repo: repo, orders: orders, now: time.Now}
}

func (s *service) Report(ctx context.Context, caller *auth.Caller, orderID uuid.UUID, req ReportRequest) (*OrderIssue, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	typ := Type(strings.ToUpper(strings.TrimSpace(req.IssueType)))
	desc := strings.TrimSpace(req.Description)
	fields := map[string]string{}
	if !typ.Valid() {
		fields["issue_type"] = "must be one of NOT_DELIVERED, WRONG_ITEMS, DAMAGED, POOR_QUALITY, LATE, OTHER"
	}
	if desc == "" {
		fields["description"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid issue", fields)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) {
		return nil, apperr.Forbidden("only the customer can report an issue on this order")
	}
	open, err := s.repo.HasOpen(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, errOpenIssue
	}

	now := s.now()
	i := &OrderIssue{
		ID:          uuid.New(),
		OrderID:     orderID,
		ReporterID:  caller.ID,
		IssueType:   typ,
		Description: desc,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	log.Printf("issue: reported issue=%s order=%s type=%s by=%s", i.ID, orderID, typ, caller.ID)
	return i, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateStatusRequest) (*OrderIssue, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !CanTransition(i.Status, next) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot move issue from %s to %s", i.Status, next))
	}

	from := i.Status
	now := s.now()
	i.Status = next
	i.UpdatedAt = now
	if note := strings.TrimSpace(req.Note); note != "" {
		i.ResolutionNote = note
	}
	if next.Closes() {
		i.ResolvedAt = &now
		i.ResolvedByID = &caller.ID
	}
	if err := s.repo.Update(ctx, i, from); err != nil {
		log.Printf("issue: %s -> %s issue=%s by=%s failed: %v", from, next, id, caller.ID, err)
		return nil, err
	}
	log.Printf("issue: issue=%s %s -> %s by=%s", id, from, next, caller.ID)
	return i, nil
}

func (s *service) ListForOrder(ctx context.Context, caller *auth.Caller, orderID uuid.UUID) ([]*OrderIssue, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) && !caller.Owns(o.ProducerID) && !caller.IsAdmin() {
		return nil, apperr.Forbidden("not your order")
	}
	return s.repo.ListForOrder(ctx, orderID)
}

func (s *service) ListOpen(ctx context.Context, caller *auth.Caller) ([]*OrderIssue, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListOpen(ctx)
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
