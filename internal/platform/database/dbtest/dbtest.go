// Package dbtest opens throwaway sqlite databases carrying the application
// schema, for repository tests that need real transactions.
package dbtest

import (
	_ "embed"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed schema_sqlite.sql
var schema string

// Open returns an in-memory database with the schema applied. The pool is
// pinned to one connection since every sqlite :memory: connection is a
// separate database.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

// SeedUser inserts a user with the given role and returns its id.
func SeedUser(t testing.TB, db *sqlx.DB, role, first, last string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, email, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)`,
		id, fmt.Sprintf("%s@example.com", id), nullable(first), nullable(last), role)
	require.NoError(t, err)
	return id
}

// SeedStand inserts a market stand and returns its id.
func SeedStand(t testing.TB, db *sqlx.DB, ownerID uuid.UUID, status string, lat, lng float64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO market_stands
		(id, owner_id, name, latitude, longitude, status, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, ownerID, "Stand "+id.String()[:8], lat, lng, status, now, now)
	require.NoError(t, err)
	return id
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// SeedProduct inserts an active product with the given status and images.
func SeedProduct(t testing.TB, db *sqlx.DB, ownerID uuid.UUID, status string, priceCents int64, images ...string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO products
		(id, owner_id, name, price_cents, images, status, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, ownerID, "Product "+id.String()[:8], priceCents, pq.StringArray(images), status, now, now)
	require.NoError(t, err)
	return id
}
