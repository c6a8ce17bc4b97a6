package stand

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const standColumns = `id, owner_id, name, description, location, latitude, longitude,
	status, is_active, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, s *MarketStand) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO market_stands (`+standColumns+`)
		VALUES (:id, :owner_id, :name, :description, :location, :latitude, :longitude,
		        :status, :is_active, :created_at, :updated_at)`, s)
	if err != nil {
		return apperr.Unexpected("failed to create market stand", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*MarketStand, error) {
	s := &MarketStand{}
	err := r.db.GetContext(ctx, s, r.db.Rebind(`SELECT `+standColumns+` FROM market_stands WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("market stand not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load market stand", err)
	}
	return s, nil
}

func (r *postgresRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*MarketStand, error) {
	stands := []*MarketStand{}
	err := r.db.SelectContext(ctx, &stands, r.db.Rebind(`
		SELECT `+standColumns+` FROM market_stands
		WHERE owner_id = ? ORDER BY created_at DESC`), ownerID)
	if err != nil {
		return nil, apperr.Unexpected("failed to list market stands", err)
	}
	return stands, nil
}
