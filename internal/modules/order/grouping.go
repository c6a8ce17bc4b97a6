package order

import (
	"context"
	"log"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/product"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/zone"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// ErrDeliveryFetch is returned when any query behind the delivery view fails.
var ErrDeliveryFetch = apperr.Unexpected("failed to fetch delivery orders", nil)

// ActiveZones lists a producer's active delivery zones.
type ActiveZones interface {
	ListActiveZonesByProducer(ctx context.Context, producerID uuid.UUID) ([]*zone.DeliveryZone, error)
}

// DeliveryLister loads active delivery orders for a set of zones, ordered by
// delivery date ascending.
type DeliveryLister interface {
	ListActiveDeliveries(ctx context.Context, zoneIDs []uuid.UUID) ([]*OrderSummary, error)
}

// Aggregator builds the producer fulfillment view.
type Aggregator struct {
	zones  ActiveZones
	orders DeliveryLister
	loc    *time.Location
}

// NewAggregator creates an aggregator that buckets delivery dates by their
// weekday in loc.
func NewAggregator(zones ActiveZones, orders DeliveryLister, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{zones: zones, orders: orders, loc: loc}
}

// DeliveryOrdersByDayAndZone groups the producer's active delivery orders by
// the calendar weekday of their delivery date, then by zone. A producer with
// no active zones gets an empty map.
func (a *Aggregator) DeliveryOrdersByDayAndZone(ctx context.Context, producerID uuid.UUID) (map[string][]*ZoneOrders, error) {
	zones, err := a.zones.ListActiveZonesByProducer(ctx, producerID)
	if err != nil {
		log.Printf("order: delivery zones for producer=%s failed: %v", producerID, err)
		return nil, ErrDeliveryFetch
	}
	if len(zones) == 0 {
		return map[string][]*ZoneOrders{}, nil
	}

	names := make(map[uuid.UUID]string, len(zones))
	ids := make([]uuid.UUID, 0, len(zones))
	for _, z := range zones {
		names[z.ID] = z.Name
		ids = append(ids, z.ID)
	}

	summaries, err := a.orders.ListActiveDeliveries(ctx, ids)
	if err != nil {
		log.Printf("order: delivery orders for producer=%s failed: %v", producerID, err)
		return nil, ErrDeliveryFetch
	}
	return GroupByDayAndZone(summaries, names, a.loc), nil
}

// GroupByDayAndZone buckets orders by weekday name, then by zone. Zone groups
// are created on first encounter and orders keep their input order. The
// weekday comes from the delivery date itself, not the zone's delivery days.
func GroupByDayAndZone(orders []*OrderSummary, zoneNames map[uuid.UUID]string, loc *time.Location) map[string][]*ZoneOrders {
	out := map[string][]*ZoneOrders{}
	for _, o := range orders {
		day := string(product.WeekdayOf(o.DeliveryDate.In(loc)))

		var group *ZoneOrders
		for _, g := range out[day] {
			if g.ZoneID == o.DeliveryZoneID {
				group = g
				break
			}
		}
		if group == nil {
			group = &ZoneOrders{ZoneID: o.DeliveryZoneID, ZoneName: zoneNames[o.DeliveryZoneID]}
			out[day] = append(out[day], group)
		}
		group.Orders = append(group.Orders, o)
	}
	return out
}
