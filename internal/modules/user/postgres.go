package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const selectUser = `
	SELECT id, email, COALESCE(first_name, '') AS first_name, COALESCE(last_name, '') AS last_name,
	       role, created_at, updated_at
	FROM users`

func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	if err := r.db.GetContext(ctx, u, r.db.Rebind(selectUser+` WHERE id = ?`), id); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	if err := r.db.GetContext(ctx, u, r.db.Rebind(selectUser+` WHERE email = ?`), email); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("user not found")
	default:
		return apperr.Unexpected("failed to load user", err)
	}
}
