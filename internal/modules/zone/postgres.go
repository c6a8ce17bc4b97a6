package zone

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository creates the zone repository. Queries use ?
// placeholders rebound for the driver.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const zoneColumns = `id, producer_id, name, description, zip_codes, cities, states, delivery_days,
	delivery_fee_cents, free_delivery_threshold_cents, minimum_order_cents,
	is_active, is_suspended, suspension_reason, suspended_at, suspended_by_id,
	is_flagged, flag_reason, flagged_at, flagged_by_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, z *DeliveryZone) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO delivery_zones
		  (id, producer_id, name, description, zip_codes, cities, states, delivery_days,
		   delivery_fee_cents, free_delivery_threshold_cents, minimum_order_cents,
		   is_active, is_suspended, is_flagged, created_at, updated_at)
		VALUES
		  (:id, :producer_id, :name, :description, :zip_codes, :cities, :states, :delivery_days,
		   :delivery_fee_cents, :free_delivery_threshold_cents, :minimum_order_cents,
		   :is_active, :is_suspended, :is_flagged, :created_at, :updated_at)`, z)
	if err != nil {
		return apperr.Unexpected("failed to create delivery zone", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*DeliveryZone, error) {
	z := &DeliveryZone{}
	err := r.db.GetContext(ctx, z, r.db.Rebind(`SELECT `+zoneColumns+` FROM delivery_zones WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("delivery zone not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load delivery zone", err)
	}
	return z, nil
}

func (r *postgresRepo) ListByProducer(ctx context.Context, producerID uuid.UUID, activeOnly bool) ([]*DeliveryZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM delivery_zones WHERE producer_id = ?`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	zones := []*DeliveryZone{}
	if err := r.db.SelectContext(ctx, &zones, r.db.Rebind(query), producerID); err != nil {
		return nil, apperr.Unexpected("failed to list delivery zones", err)
	}
	return zones, nil
}

func (r *postgresRepo) Update(ctx context.Context, z *DeliveryZone) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE delivery_zones SET
		  name = :name, description = :description, zip_codes = :zip_codes, cities = :cities,
		  states = :states, delivery_days = :delivery_days, delivery_fee_cents = :delivery_fee_cents,
		  free_delivery_threshold_cents = :free_delivery_threshold_cents,
		  minimum_order_cents = :minimum_order_cents, is_active = :is_active,
		  is_suspended = :is_suspended, suspension_reason = :suspension_reason,
		  suspended_at = :suspended_at, suspended_by_id = :suspended_by_id,
		  is_flagged = :is_flagged, flag_reason = :flag_reason, flagged_at = :flagged_at,
		  flagged_by_id = :flagged_by_id, updated_at = :updated_at
		WHERE id = :id`, z)
	if err != nil {
		return apperr.Unexpected("failed to update delivery zone", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("delivery zone not found")
	}
	return nil
}
