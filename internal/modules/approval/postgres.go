package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository creates the approval repository. Queries use ?
// placeholders rebound for the driver.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Apply(ctx context.Context, t Transition) (*Decision, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Unexpected("failed to begin review transaction", err)
	}
	defer tx.Rollback()

	item := PendingItem{Kind: t.Kind}
	err = tx.GetContext(ctx, &item, tx.Rebind(`
		SELECT id, owner_id, name, status, created_at FROM `+t.Kind.table()+` WHERE id = ?`), t.EntityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(t.Kind.label() + " not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load "+t.Kind.label(), err)
	}
	if !CanTransition(item.Status, t.To) {
		return nil, apperr.Conflict(fmt.Sprintf("%s is already %s", t.Kind.label(), item.Status))
	}

	update := `UPDATE ` + t.Kind.table() + ` SET status = ?, updated_at = ?`
	if t.Kind == KindMarketStand && t.To == StatusRejected {
		update += `, is_active = FALSE`
	}
	update += ` WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, tx.Rebind(update), t.To, t.At, t.EntityID, item.Status)
	if err != nil {
		return nil, apperr.Unexpected("failed to update "+t.Kind.label()+" status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.Conflict(t.Kind.label() + " was reviewed concurrently")
	}

	h := StatusHistory{
		ID:          uuid.New(),
		EntityKind:  t.Kind,
		EntityID:    t.EntityID,
		OldStatus:   item.Status,
		NewStatus:   t.To,
		ChangedByID: t.ChangedByID,
		Note:        t.Note,
		CreatedAt:   t.At,
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO status_history
		  (id, entity_kind, entity_id, old_status, new_status, changed_by_id, note, created_at)
		VALUES
		  (:id, :entity_kind, :entity_id, :old_status, :new_status, :changed_by_id, :note, :created_at)`, h)
	if err != nil {
		return nil, apperr.Unexpected("failed to record status history", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Unexpected("failed to commit review", err)
	}
	item.Status = t.To
	return &Decision{Entity: item, History: h}, nil
}

func (r *postgresRepo) ListPending(ctx context.Context, kind EntityKind) ([]*PendingItem, error) {
	items := []*PendingItem{}
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT id, owner_id, name, status, created_at FROM `+kind.table()+`
		WHERE status = ? ORDER BY created_at DESC`), StatusPending)
	if err != nil {
		return nil, apperr.Unexpected("failed to list pending "+kind.label()+"s", err)
	}
	for _, it := range items {
		it.Kind = kind
	}
	return items, nil
}

func (r *postgresRepo) History(ctx context.Context, kind EntityKind, id uuid.UUID) ([]*StatusHistory, error) {
	rows := []*StatusHistory{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, entity_kind, entity_id, old_status, new_status, changed_by_id, note, created_at
		FROM status_history WHERE entity_kind = ? AND entity_id = ?
		ORDER BY created_at ASC`), kind, id)
	if err != nil {
		return nil, apperr.Unexpected("failed to load status history", err)
	}
	return rows, nil
}
