package product

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/listingcache"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/stand"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	products  map[uuid.UUID]*Product
	listings  []*Listing
	boundsHit int
}

func newMemRepo() *memRepo { return &memRepo{products: map[uuid.UUID]*Product{}} }

func (m *memRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	out := []*Product{}
	for _, id := range ids {
		if p, err := m.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) ListByProducer(_ context.Context, producerID uuid.UUID) ([]*Product, error) {
	out := []*Product{}
	for _, p := range m.products {
		if p.ProducerID == producerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, p *Product) error {
	stored, ok := m.products[p.ID]
	if !ok {
		return apperr.NotFound("product not found")
	}
	cp := *p
	cp.Plan = stored.Plan
	cp.Status = stored.Status
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) SavePlan(_ context.Context, id uuid.UUID, plan DeliveryPlan, at time.Time) error {
	p, ok := m.products[id]
	if !ok {
		return apperr.NotFound("product not found")
	}
	// Round-trip through the column pair the way the database does.
	schedule, dates := plan.columns()
	p.Plan = planFromColumns(schedule, dates)
	p.UpdatedAt = at
	return nil
}

func (m *memRepo) ListInBounds(_ context.Context, b Bounds) ([]*Listing, error) {
	m.boundsHit++
	out := []*Listing{}
	for _, l := range m.listings {
		if l.Latitude >= b.MinLat && l.Latitude <= b.MaxLat && l.Longitude >= b.MinLng && l.Longitude <= b.MaxLng {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

type standMap map[uuid.UUID]*stand.MarketStand

func (s standMap) GetStand(_ context.Context, id uuid.UUID) (*stand.MarketStand, error) {
	if st, ok := s[id]; ok {
		return st, nil
	}
	return nil, apperr.NotFound("market stand not found")
}

var (
	owner    = &auth.Caller{ID: uuid.New(), Role: user.RoleProducer}
	stranger = &auth.Caller{ID: uuid.New(), Role: user.RoleProducer}
	customer = &auth.Caller{ID: uuid.New(), Role: user.RoleCustomer}
)

type fixture struct {
	svc   Service
	repo  *memRepo
	cache *listingcache.Cache[[]*Listing]
	id    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	cache := listingcache.New[[]*Listing](nil, 0)
	svc := NewService(repo, standMap{}, cache)
	p, err := svc.CreateProduct(context.Background(), owner, CreateProductRequest{Name: "Honey", PriceCents: 900})
	require.NoError(t, err)
	return &fixture{svc: svc, repo: repo, cache: cache, id: p.ID}
}

func (f *fixture) stored() *Product { return f.repo.products[f.id] }

func weekly() Schedule {
	return Schedule{
		Monday:   {Enabled: true, Inventory: 10},
		Thursday: {Enabled: true, Inventory: 4},
		Sunday:   {Enabled: false},
	}
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	p := f.stored()
	assert.Equal(t, approval.StatusPending, p.Status)
	assert.Equal(t, owner.ID, p.ProducerID)
	assert.Equal(t, NoPlan{}, p.Plan)

	_, err := f.svc.CreateProduct(context.Background(), customer, CreateProductRequest{Name: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.CreateProduct(context.Background(), owner, CreateProductRequest{Name: " ", PriceCents: -1})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Len(t, apperr.FieldsOf(err), 2)
}

func TestCreateProductChecksStandOwner(t *testing.T) {
	mine, theirs := uuid.New(), uuid.New()
	stands := standMap{
		mine:   {ID: mine, OwnerID: owner.ID},
		theirs: {ID: theirs, OwnerID: stranger.ID},
	}
	svc := NewService(newMemRepo(), stands, listingcache.New[[]*Listing](nil, 0))
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, owner, CreateProductRequest{Name: "Kale", StandID: &mine})
	require.NoError(t, err)
	assert.Equal(t, mine, *p.StandID)

	_, err = svc.CreateProduct(ctx, owner, CreateProductRequest{Name: "Kale", StandID: &theirs})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	missing := uuid.New()
	_, err = svc.CreateProduct(ctx, owner, CreateProductRequest{Name: "Kale", StandID: &missing})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestClearScheduleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SetRecurringSchedule(ctx, owner, f.id, weekly())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.svc.ClearSchedule(ctx, owner, f.id)
		require.NoError(t, err)
		schedule, dates := f.stored().Plan.columns()
		assert.Nil(t, schedule)
		assert.Empty(t, dates)
		assert.Equal(t, NoPlan{}, f.stored().Plan)
	}
}

func TestPlansAreMutuallyExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dates := []time.Time{time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)}

	_, err := f.svc.SetOneTimeDates(ctx, owner, f.id, dates)
	require.NoError(t, err)
	_, err = f.svc.SetRecurringSchedule(ctx, owner, f.id, weekly())
	require.NoError(t, err)
	schedule, stored := f.stored().Plan.columns()
	assert.Equal(t, weekly(), schedule)
	assert.Empty(t, stored)

	p, err := f.svc.SetOneTimeDates(ctx, owner, f.id, dates)
	require.NoError(t, err)
	schedule, stored = f.stored().Plan.columns()
	assert.Nil(t, schedule)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Equal(dates[0]))
	assert.IsType(t, OneTimePlan{}, p.Plan)
}

func TestSetOneTimeDatesValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetOneTimeDates(context.Background(), owner, f.id, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, NoPlan{}, f.stored().Plan)
}

func TestUpdateDayInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateDayInventory(ctx, owner, f.id, Monday, 3)
	assert.True(t, errors.Is(err, ErrDayNotEnabled), "no recurring plan yet")

	_, err = f.svc.SetRecurringSchedule(ctx, owner, f.id, weekly())
	require.NoError(t, err)

	p, err := f.svc.UpdateDayInventory(ctx, owner, f.id, Monday, 25)
	require.NoError(t, err)
	schedule := p.Plan.(RecurringPlan).Schedule
	assert.Equal(t, 25, schedule[Monday].Inventory)
	assert.Equal(t, 4, schedule[Thursday].Inventory)

	_, err = f.svc.UpdateDayInventory(ctx, owner, f.id, Sunday, 1)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.UpdateDayInventory(ctx, owner, f.id, "monday", 1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.UpdateDayInventory(ctx, owner, f.id, Monday, -1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestScheduleMutationsRequireOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetRecurringSchedule(ctx, stranger, f.id, weekly())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.ClearSchedule(ctx, nil, f.id)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = f.svc.ClearSchedule(ctx, owner, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, NoPlan{}, f.stored().Plan)
}

func TestListNearbyUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	near := &Listing{Product: &Product{ID: uuid.New()}, Latitude: 41.88, Longitude: -87.63}
	farInBox := &Listing{Product: &Product{ID: uuid.New()}, Latitude: 42.09, Longitude: -87.40}
	f.repo.listings = []*Listing{farInBox, near}

	got, err := f.svc.ListNearby(ctx, NearbyQuery{Lat: 41.881, Lng: -87.629, RadiusKm: 25})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near.Product.ID, got[0].Product.ID)
	assert.Equal(t, 1, f.repo.boundsHit)

	_, err = f.svc.ListNearby(ctx, NearbyQuery{Lat: 41.8812, Lng: -87.6293, RadiusKm: 25})
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.boundsHit, "same rounded key served from cache")

	_, err = f.svc.SetRecurringSchedule(ctx, owner, f.id, weekly())
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.Len())

	_, err = f.svc.ListNearby(ctx, NearbyQuery{Lat: 41.881, Lng: -87.629, RadiusKm: 25})
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.boundsHit)
}

func TestListNearbyValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListNearby(context.Background(), NearbyQuery{Lat: 91, Lng: 0})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.FieldsOf(err), "lat")

	_, err = f.svc.ListNearby(context.Background(), NearbyQuery{Lat: math.NaN(), Lng: math.Inf(1), RadiusKm: math.NaN()})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "lat")
	assert.Contains(t, fields, "lng")
	assert.Contains(t, fields, "radius_km")
	assert.Zero(t, f.repo.boundsHit)
	assert.Zero(t, f.cache.Len())
}

func TestUpdateProductKeepsPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SetRecurringSchedule(ctx, owner, f.id, weekly())
	require.NoError(t, err)

	price := int64(1200)
	p, err := f.svc.UpdateProduct(ctx, owner, f.id, UpdateProductRequest{PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), p.PriceCents)
	assert.IsType(t, RecurringPlan{}, f.stored().Plan)

	_, err = f.svc.UpdateProduct(ctx, stranger, f.id, UpdateProductRequest{PriceCents: &price})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
