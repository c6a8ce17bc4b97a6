package issue

import (
	"context"
	"testing"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database/dbtest"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, db *sqlx.DB, customerID, producerID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO orders
		(id, order_number, customer_id, producer_id, status, type, subtotal_cents, total_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'COMPLETED', 'PICKUP', 1000, 1000, ?, ?)`,
		id, "ORD-"+id.String()[:8], customerID, producerID, now, now)
	require.NoError(t, err)
	return id
}

func newIssue(orderID, reporterID uuid.UUID, at time.Time) *OrderIssue {
	return &OrderIssue{
		ID:          uuid.New(),
		OrderID:     orderID,
		ReporterID:  reporterID,
		IssueType:   TypeWrongItems,
		Description: "got pears instead of apples",
		Status:      StatusPending,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestOneOpenIssuePerOrder(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	cust := dbtest.SeedUser(t, db, "CUSTOMER", "", "")
	prod := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	orderID := seedOrder(t, db, cust, prod)
	now := time.Now().UTC()

	first := newIssue(orderID, cust, now)
	require.NoError(t, repo.Create(ctx, first))

	open, err := repo.HasOpen(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, open)

	err = repo.Create(ctx, newIssue(orderID, cust, now.Add(time.Second)))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.ErrorIs(t, err, errOpenIssue)

	first.Status = StatusResolved
	first.ResolvedAt = &now
	first.ResolvedByID = &prod
	first.UpdatedAt = now
	require.NoError(t, repo.Update(ctx, first, StatusPending))

	open, err = repo.HasOpen(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, open)
	require.NoError(t, repo.Create(ctx, newIssue(orderID, cust, now.Add(2*time.Second))))

	all, err := repo.ListForOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, StatusPending, all[0].Status)
	assert.Equal(t, StatusResolved, all[1].Status)
	require.NotNil(t, all[1].ResolvedByID)
	assert.Equal(t, prod, *all[1].ResolvedByID)
}

func TestIssueUpdateIsGuarded(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	cust := dbtest.SeedUser(t, db, "CUSTOMER", "", "")
	orderID := seedOrder(t, db, cust, dbtest.SeedUser(t, db, "PRODUCER", "", ""))
	i := newIssue(orderID, cust, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, i))

	i.Status = StatusInvestigating
	err := repo.Update(ctx, i, StatusInvestigating)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := repo.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListOpenIssues(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	cust := dbtest.SeedUser(t, db, "CUSTOMER", "", "")
	prod := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	now := time.Now().UTC()

	older := newIssue(seedOrder(t, db, cust, prod), cust, now.Add(-time.Hour))
	newer := newIssue(seedOrder(t, db, cust, prod), cust, now)
	closed := newIssue(seedOrder(t, db, cust, prod), cust, now)
	closed.Status = StatusRefunded
	for _, i := range []*OrderIssue{newer, older, closed} {
		require.NoError(t, repo.Create(ctx, i))
	}

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, older.ID, open[0].ID)
	assert.Equal(t, newer.ID, open[1].ID)
}
