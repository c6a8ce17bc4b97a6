package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository creates a product repository. Queries are written
// with ? placeholders and rebound for the driver in use.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `p.id, p.owner_id, p.stand_id, p.name, p.description, p.price_cents,
	p.images, p.status, p.is_active, p.delivery_schedule, p.delivery_dates, p.created_at, p.updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products
		  (id, owner_id, stand_id, name, description, price_cents, images, status, is_active,
		   delivery_schedule, delivery_dates, created_at, updated_at)
		VALUES
		  (:id, :owner_id, :stand_id, :name, :description, :price_cents, :images, :status, :is_active,
		   :delivery_schedule, :delivery_dates, :created_at, :updated_at)`, rowFor(p))
	if err != nil {
		return apperr.Unexpected("failed to create product", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := &productRow{}
	err := r.db.GetContext(ctx, row, r.db.Rebind(`SELECT `+productColumns+` FROM products p WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load product", err)
	}
	return row.product(), nil
}

func (r *postgresRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products p WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, apperr.Unexpected("failed to load products", err)
	}
	return r.selectProducts(ctx, "failed to load products", r.db.Rebind(query), args...)
}

func (r *postgresRepo) ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*Product, error) {
	return r.selectProducts(ctx, "failed to list products", r.db.Rebind(`
		SELECT `+productColumns+` FROM products p
		WHERE p.owner_id = ? ORDER BY p.created_at DESC`), producerID)
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products SET
		  name = :name, description = :description, price_cents = :price_cents,
		  images = :images, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, rowFor(p))
	if err != nil {
		return apperr.Unexpected("failed to update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *postgresRepo) SavePlan(ctx context.Context, id uuid.UUID, plan DeliveryPlan, at time.Time) error {
	schedule, dates := plan.columns()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET delivery_schedule = ?, delivery_dates = ?, updated_at = ?
		WHERE id = ?`), schedule, dates, at, id)
	if err != nil {
		return apperr.Unexpected("failed to save delivery plan", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *postgresRepo) ListInBounds(ctx context.Context, b Bounds) ([]*Listing, error) {
	query := r.db.Rebind(`
		SELECT `+productColumns+`, s.name AS stand_name, s.latitude, s.longitude
		FROM products p
		JOIN market_stands s ON s.id = p.stand_id
		WHERE p.status = ? AND p.is_active = TRUE
		  AND s.status = ? AND s.is_active = TRUE
		  AND s.latitude BETWEEN ? AND ?
		  AND s.longitude BETWEEN ? AND ?
		ORDER BY p.created_at DESC`)

	rows := []*listingRow{}
	err := database.WithRetry(ctx, database.ReadRetry, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query,
			approval.StatusApproved, approval.StatusApproved, b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	})
	if err != nil {
		return nil, apperr.Unexpected("failed to list nearby products", err)
	}
	out := make([]*Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Listing{
			Product:   row.product(),
			StandID:   *row.StandID,
			StandName: row.StandName,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		})
	}
	return out, nil
}

func (r *postgresRepo) selectProducts(ctx context.Context, failure, query string, args ...interface{}) ([]*Product, error) {
	rows := []*productRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Unexpected(failure, err)
	}
	out := make([]*Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.product())
	}
	return out, nil
}
