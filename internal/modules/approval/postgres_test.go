package approval

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

func transition(kind EntityKind, id, adminID uuid.UUID, to Status, note string) Transition {
	return Transition{Kind: kind, EntityID: id, To: to, ChangedByID: adminID, Note: note, At: time.Now().UTC()}
}

func currentStatus(t *testing.T, db *sqlx.DB, table string, id uuid.UUID) (Status, bool) {
	t.Helper()
	var row struct {
		Status   Status `db:"status"`
		IsActive bool   `db:"is_active"`
	}
	require.NoError(t, db.Get(&row, `SELECT status, is_active FROM `+table+` WHERE id = ?`, id))
	return row.Status, row.IsActive
}

func historyCount(t *testing.T, db *sqlx.DB, id uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM status_history WHERE entity_id = ?`, id))
	return n
}

func TestApplyApprovesAndRecordsHistory(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	adminID := dbtest.SeedUser(t, db, "ADMIN", "", "")
	standID := dbtest.SeedStand(t, db, owner, "PENDING", 41.9, -87.6)

	d, err := repo.Apply(ctx, transition(KindMarketStand, standID, adminID, StatusApproved, DefaultApproveNote))
	require.NoError(t, err)
	assert.Equal(t, owner, d.Entity.OwnerID)
	assert.Equal(t, StatusApproved, d.Entity.Status)

	status, active := currentStatus(t, db, "market_stands", standID)
	assert.Equal(t, StatusApproved, status)
	assert.True(t, active)

	history, err := repo.History(ctx, KindMarketStand, standID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, StatusPending, history[0].OldStatus)
	assert.Equal(t, StatusApproved, history[0].NewStatus)
	assert.Equal(t, adminID, history[0].ChangedByID)
	assert.Equal(t, DefaultApproveNote, history[0].Note)

	_, err = repo.Apply(ctx, transition(KindMarketStand, standID, adminID, StatusRejected, "late"))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, historyCount(t, db, standID))
}

func TestApplyRejectDeactivatesStandOnly(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	adminID := dbtest.SeedUser(t, db, "ADMIN", "", "")
	standID := dbtest.SeedStand(t, db, owner, "PENDING", 41.9, -87.6)
	productID := dbtest.SeedProduct(t, db, owner, "PENDING", 500)

	_, err := repo.Apply(ctx, transition(KindMarketStand, standID, adminID, StatusRejected, "no permit"))
	require.NoError(t, err)
	status, active := currentStatus(t, db, "market_stands", standID)
	assert.Equal(t, StatusRejected, status)
	assert.False(t, active)

	_, err = repo.Apply(ctx, transition(KindProduct, productID, adminID, StatusRejected, "blurry"))
	require.NoError(t, err)
	status, active = currentStatus(t, db, "products", productID)
	assert.Equal(t, StatusRejected, status)
	assert.True(t, active)
}

func TestApplyIsAtomic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	owner := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	adminID := dbtest.SeedUser(t, db, "ADMIN", "", "")
	productID := dbtest.SeedProduct(t, db, owner, "PENDING", 500)

	// The status UPDATE succeeds, then the history INSERT fails.
	_, err := db.Exec(`ALTER TABLE status_history RENAME TO status_history_gone`)
	require.NoError(t, err)

	_, err = repo.Apply(context.Background(), transition(KindProduct, productID, adminID, StatusApproved, "ok"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))

	status, _ := currentStatus(t, db, "products", productID)
	assert.Equal(t, StatusPending, status)

	_, err = db.Exec(`ALTER TABLE status_history_gone RENAME TO status_history`)
	require.NoError(t, err)
	assert.Zero(t, historyCount(t, db, productID))
}

func TestApplyMissingEntity(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	adminID := dbtest.SeedUser(t, db, "ADMIN", "", "")

	_, err := repo.Apply(context.Background(), transition(KindProduct, uuid.New(), adminID, StatusApproved, "ok"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListPendingNewestFirst(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db, "PRODUCER", "", "")
	adminID := dbtest.SeedUser(t, db, "ADMIN", "", "")

	older := dbtest.SeedProduct(t, db, owner, "PENDING", 100)
	newer := dbtest.SeedProduct(t, db, owner, "PENDING", 100)
	_, err := db.Exec(`UPDATE products SET created_at = ? WHERE id = ?`, time.Now().UTC().Add(-time.Hour), older)
	require.NoError(t, err)
	approved := dbtest.SeedProduct(t, db, owner, "PENDING", 100)
	_, err = repo.Apply(ctx, transition(KindProduct, approved, adminID, StatusApproved, "ok"))
	require.NoError(t, err)

	items, err := repo.ListPending(ctx, KindProduct)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer, items[0].ID)
	assert.Equal(t, older, items[1].ID)
	assert.Equal(t, KindProduct, items[0].Kind)
}
