package issue

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const issueColumns = `id, order_id, reporter_id, issue_type, description, status,
	resolution_note, resolved_at, resolved_by_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, i *OrderIssue) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO order_issues (`+issueColumns+`)
		VALUES (:id, :order_id, :reporter_id, :issue_type, :description, :status,
		        :resolution_note, :resolved_at, :resolved_by_id, :created_at, :updated_at)`, i)
	if database.IsUniqueViolation(err) {
		return errOpenIssue
	}
	if err != nil {
		return apperr.Unexpected("failed to create order issue", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*OrderIssue, error) {
	i := &OrderIssue{}
	err := r.db.GetContext(ctx, i, r.db.Rebind(`SELECT `+issueColumns+` FROM order_issues WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order issue not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load order issue", err)
	}
	return i, nil
}

func (r *postgresRepo) HasOpen(ctx context.Context, orderID uuid.UUID) (bool, error) {
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM order_issues WHERE order_id = ? AND status IN (?)`, orderID, OpenStatuses)
	if err != nil {
		return false, apperr.Unexpected("failed to build open issue query", err)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		return false, apperr.Unexpected("failed to check open issues", err)
	}
	return n > 0, nil
}

func (r *postgresRepo) Update(ctx context.Context, i *OrderIssue, from Status) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE order_issues
		SET status = ?, resolution_note = ?, resolved_at = ?, resolved_by_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`),
		i.Status, i.ResolutionNote, i.ResolvedAt, i.ResolvedByID, i.UpdatedAt, i.ID, from)
	if err != nil {
		return apperr.Unexpected("failed to update order issue", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflict("order issue changed, reload and try again")
	}
	return nil
}

func (r *postgresRepo) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderIssue, error) {
	issues := []*OrderIssue{}
	err := r.db.SelectContext(ctx, &issues, r.db.Rebind(`
		SELECT `+issueColumns+` FROM order_issues WHERE order_id = ? ORDER BY created_at DESC`), orderID)
	if err != nil {
		return nil, apperr.Unexpected("failed to list order issues", err)
	}
	return issues, nil
}

func (r *postgresRepo) ListOpen(ctx context.Context) ([]*OrderIssue, error) {
	query, args, err := sqlx.In(`
		SELECT `+issueColumns+` FROM order_issues WHERE status IN (?) ORDER BY created_at ASC`, OpenStatuses)
	if err != nil {
		return nil, apperr.Unexpected("failed to build open issue query", err)
	}
	issues := []*OrderIssue{}
	if err := r.db.SelectContext(ctx, &issues, r.db.Rebind(query), args...); err != nil {
		return nil, apperr.Unexpected("failed to list open issues", err)
	}
	return issues, nil
}
