package order

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/product"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/zone"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

const (
	// numberAttempts bounds retries when a generated order number clashes.
	numberAttempts = 3

	// maxQuantity caps a single cart line after duplicate lines are merged.
	maxQuantity = 10_000

	// maxSubtotalCents caps an order subtotal so totals and tax stay in range.
	maxSubtotalCents int64 = 100_000_000_000
)

// Service defines the order management business logic.
type Service interface {
	// PlaceOrder validates the cart, calculates totals, and persists the order atomically.
	PlaceOrder(ctx context.Context, caller *auth.Caller, req PlaceOrderRequest) (*Order, error)

	// GetOrder returns an order to its customer, its producer or an admin.
	GetOrder(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Order, error)

	// ListCustomerOrders returns all orders placed by the caller.
	ListCustomerOrders(ctx context.Context, caller *auth.Caller) ([]*Order, error)

	// UpdateStatus advances an order; only its producer or an admin may.
	UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, status OrderStatus) (*Order, error)

	// CancelOrder lets the customer cancel a PENDING order.
	CancelOrder(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Order, error)

	// GetDeliveryOrdersByDayAndZone is the producer fulfillment view.
	GetDeliveryOrdersByDayAndZone(ctx context.Context, caller *auth.Caller, producerID uuid.UUID) (map[string][]*ZoneOrders, error)
}

// Zones resolves delivery zones for checkout and fulfillment.
type Zones interface {
	ActiveZones
	GetZone(ctx context.Context, id uuid.UUID) (*zone.DeliveryZone, error)
}

// Products loads the products in a cart.
type Products interface {
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error)
}

type service struct {
	repo       Repository
	zones      Zones
	products   Products
	aggregator *Aggregator
	taxRateBps int64
	now        func() time.Time
}

// NewService creates a new order service. Tax is taxRateBps basis points of
// the subtotal; loc is the market timezone used to name delivery weekdays.
func NewService(repo Repository, zones Zones, products Products, taxRateBps int64, loc *time.Location) Service {
	return &service{
		repo:       repo,
		zones:      zones,
		products:   products,
		aggregator: NewAggregator(zones, repo, loc),
		taxRateBps: taxRateBps,
		now:        time.Now,
	}
}

func (s *service) PlaceOrder(ctx context.Context, caller *auth.Caller, req PlaceOrderRequest) (*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	cart, err := mergeCart(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Type != TypePickup && req.Type != TypeDelivery {
		return nil, apperr.ValidationFields("invalid order", map[string]string{"type": "must be PICKUP or DELIVERY"})
	}

	// ── Build order items from current prices ─────────────────────────────────
	ids := make([]uuid.UUID, 0, len(cart))
	for _, ci := range cart {
		ids = append(ids, ci.ProductID)
	}
	found, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	now := s.now()
	o := &Order{
		ID:         uuid.New(),
		CustomerID: caller.ID,
		Status:     StatusPending,
		Type:       req.Type,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, ci := range cart {
		p, ok := byID[ci.ProductID]
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("product %s not found", ci.ProductID))
		}
		if p.Status != approval.StatusApproved || !p.IsActive {
			return nil, apperr.Validation(fmt.Sprintf("product %q is not available", p.Name))
		}
		if i == 0 {
			o.ProducerID = p.ProducerID
		} else if p.ProducerID != o.ProducerID {
			return nil, apperr.Validation("all items in an order must come from one producer")
		}
		if p.PriceCents > 0 && p.PriceCents > (maxSubtotalCents-o.SubtotalCents)/int64(ci.Quantity) {
			return nil, apperr.ValidationFields("invalid order", map[string]string{"items": "order total is too large"})
		}
		line := p.PriceCents * int64(ci.Quantity)
		o.SubtotalCents += line
		o.Items = append(o.Items, &OrderItem{
			ID:             uuid.New(),
			OrderID:        o.ID,
			ProductID:      p.ID,
			Quantity:       ci.Quantity,
			UnitPriceCents: p.PriceCents,
			LineTotalCents: line,
			CreatedAt:      now,
		})
	}

	// ── Delivery rules ────────────────────────────────────────────────────────
	if req.Type == TypeDelivery {
		fee, err := s.deliveryFee(ctx, o, req)
		if err != nil {
			return nil, err
		}
		o.DeliveryFeeCents = fee
		o.DeliveryZoneID = req.DeliveryZoneID
		o.DeliveryAddress = req.DeliveryAddress
		date := req.DeliveryDate.UTC()
		o.DeliveryDate = &date
	} else if req.DeliveryDate != nil {
		date := req.DeliveryDate.UTC()
		o.DeliveryDate = &date
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	o.TaxCents = taxOn(o.SubtotalCents, s.taxRateBps)
	o.TotalCents = o.SubtotalCents + o.TaxCents + o.DeliveryFeeCents

	for attempt := 1; ; attempt++ {
		o.OrderNumber = generateOrderNumber(now)
		err = s.repo.Create(ctx, o)
		if err == nil {
			break
		}
		if apperr.KindOf(err) != apperr.KindConflict || attempt == numberAttempts {
			log.Printf("order: place for customer=%s failed: %v", caller.ID, err)
			return nil, err
		}
	}
	log.Printf("order: placed order=%s number=%s customer=%s total_cents=%d", o.ID, o.OrderNumber, caller.ID, o.TotalCents)
	return o, nil
}

func (s *service) deliveryFee(ctx context.Context, o *Order, req PlaceOrderRequest) (int64, error) {
	fields := map[string]string{}
	if req.DeliveryZoneID == nil {
		fields["delivery_zone_id"] = "is required for delivery"
	}
	if req.DeliveryDate == nil {
		fields["delivery_date"] = "is required for delivery"
	} else if req.DeliveryDate.Before(s.now()) {
		fields["delivery_date"] = "must be in the future"
	}
	if req.DeliveryAddress == nil {
		fields["delivery_address"] = "is required for delivery"
	}
	if len(fields) > 0 {
		return 0, apperr.ValidationFields("invalid delivery", fields)
	}

	z, err := s.zones.GetZone(ctx, *req.DeliveryZoneID)
	if err != nil {
		return 0, err
	}
	if z.ProducerID != o.ProducerID {
		return 0, apperr.Validation("the producer does not deliver to this zone")
	}
	if !z.AcceptsOrders() {
		return 0, apperr.Conflict("delivery zone is not accepting orders")
	}
	if !zone.IsAddressInZone(z, zone.Address(*req.DeliveryAddress)) {
		return 0, apperr.ValidationFields("invalid delivery", map[string]string{"delivery_address": "is outside the delivery zone"})
	}
	if !zone.MeetsMinimumOrder(z, o.SubtotalCents) {
		return 0, apperr.ValidationFields("invalid delivery", map[string]string{
			"subtotal_cents": fmt.Sprintf("must be at least %d for this zone", *z.MinimumOrderCents),
		})
	}
	return zone.CalculateDeliveryFee(z, o.SubtotalCents), nil
}

func (s *service) GetOrder(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) && !caller.Owns(o.ProducerID) && !caller.IsAdmin() {
		return nil, apperr.Forbidden("not your order")
	}
	return o, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, caller *auth.Caller) ([]*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.repo.ListByCustomer(ctx, caller.ID)
}

func (s *service) UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, status OrderStatus) (*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.ProducerID) && !caller.IsAdmin() {
		return nil, apperr.Forbidden("only the producer or an admin can update this order")
	}
	return s.transition(ctx, caller, o, OrderStatus(strings.ToUpper(string(status))))
}

func (s *service) CancelOrder(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) {
		return nil, apperr.Forbidden("not your order")
	}
	if o.Status != StatusPending {
		return nil, apperr.Conflict(fmt.Sprintf("only PENDING orders can be cancelled (current: %s)", o.Status))
	}
	return s.transition(ctx, caller, o, StatusCancelled)
}

func (s *service) GetDeliveryOrdersByDayAndZone(ctx context.Context, caller *auth.Caller, producerID uuid.UUID) (map[string][]*ZoneOrders, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !caller.Owns(producerID) && !caller.IsAdmin() {
		return nil, apperr.Forbidden("not your deliveries")
	}
	return s.aggregator.DeliveryOrdersByDayAndZone(ctx, producerID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *service) transition(ctx context.Context, caller *auth.Caller, o *Order, next OrderStatus) (*Order, error) {
	if !CanTransition(o.Status, next) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot transition order from %s to %s", o.Status, next))
	}
	at := s.now()
	if err := s.repo.UpdateStatus(ctx, o.ID, o.Status, next, at); err != nil {
		log.Printf("order: %s -> %s order=%s by caller=%s failed: %v", o.Status, next, o.ID, caller.ID, err)
		return nil, err
	}
	o.Status = next
	o.UpdatedAt = at
	return o, nil
}

// mergeCart validates quantities and folds repeated products into one line,
// keeping first-seen order.
func mergeCart(items []CartItem) ([]CartItem, error) {
	if len(items) == 0 {
		return nil, apperr.ValidationFields("invalid order", map[string]string{"items": "order must contain at least one item"})
	}
	out := make([]CartItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, ci := range items {
		if ci.ProductID == uuid.Nil {
			return nil, apperr.ValidationFields("invalid order", map[string]string{"items": "product_id is required"})
		}
		if ci.Quantity <= 0 {
			return nil, apperr.ValidationFields("invalid order", map[string]string{"items": fmt.Sprintf("quantity must be > 0 for product %s", ci.ProductID)})
		}
		if ci.Quantity > maxQuantity {
			return nil, apperr.ValidationFields("invalid order", map[string]string{"items": fmt.Sprintf("quantity must be at most %d for product %s", maxQuantity, ci.ProductID)})
		}
		if i, ok := index[ci.ProductID]; ok {
			out[i].Quantity += ci.Quantity
			if out[i].Quantity > maxQuantity {
				return nil, apperr.ValidationFields("invalid order", map[string]string{"items": fmt.Sprintf("quantity must be at most %d for product %s", maxQuantity, ci.ProductID)})
			}
			continue
		}
		index[ci.ProductID] = len(out)
		out = append(out, ci)
	}
	return out, nil
}

// taxOn returns bps basis points of subtotal, rounded half up.
func taxOn(subtotalCents, bps int64) int64 {
	if bps <= 0 {
		return 0
	}
	return (subtotalCents*bps + 5000) / 10000
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

