package stand

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(v float64) *float64 { return &v }

func TestCreateStand(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewPostgresRepository(db))
	ctx := context.Background()
	producer := &auth.Caller{ID: dbtest.SeedUser(t, db, "PRODUCER", "", ""), Role: user.RoleProducer}

	st, err := svc.CreateStand(ctx, producer, CreateStandRequest{
		Name:      "  Green Acres  ",
		Location:  "Logan Square",
		Latitude:  coord(41.92),
		Longitude: coord(-87.70),
	})
	require.NoError(t, err)
	assert.Equal(t, "Green Acres", st.Name)
	assert.Equal(t, approval.StatusPending, st.Status)
	assert.True(t, st.IsActive)

	got, err := svc.GetStand(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, producer.ID, got.OwnerID)
	assert.InDelta(t, 41.92, got.Latitude, 1e-9)

	mine, err := svc.ListMine(ctx, producer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, st.ID, mine[0].ID)

	_, err = svc.GetStand(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateStandRejects(t *testing.T) {
	svc := &service{repo: NewPostgresRepository(dbtest.Open(t)), now: func() time.Time { return time.Unix(0, 0) }}
	ctx := context.Background()
	producer := &auth.Caller{ID: uuid.New(), Role: user.RoleProducer}

	_, err := svc.CreateStand(ctx, nil, CreateStandRequest{})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.CreateStand(ctx, &auth.Caller{ID: uuid.New(), Role: user.RoleCustomer}, CreateStandRequest{Name: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.CreateStand(ctx, producer, CreateStandRequest{Latitude: coord(91), Longitude: nil})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")

	_, err = svc.CreateStand(ctx, producer, CreateStandRequest{Name: "Corner", Latitude: coord(math.NaN()), Longitude: coord(math.Inf(-1))})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	fields = apperr.FieldsOf(err)
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")
	assert.NotContains(t, fields, "name")
}
