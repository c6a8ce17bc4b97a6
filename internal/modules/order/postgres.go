package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository creates the order repository. Queries use ?
// placeholders rebound for the driver.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, order_number, customer_id, producer_id, status, type, delivery_date,
	delivery_zone_id, delivery_address, subtotal_cents, tax_cents, delivery_fee_cents,
	total_cents, notes, created_at, updated_at`

// Create inserts the order and all its items inside a single transaction.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Unexpected("failed to begin order transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :order_number, :customer_id, :producer_id, :status, :type, :delivery_date,
		        :delivery_zone_id, :delivery_address, :subtotal_cents, :tax_cents, :delivery_fee_cents,
		        :total_cents, :notes, :created_at, :updated_at)`, o)
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("order number already taken")
	}
	if err != nil {
		return apperr.Unexpected("failed to insert order", err)
	}

	for _, item := range o.Items {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_id, quantity, unit_price_cents, line_total_cents, created_at)
			VALUES
			  (:id, :order_id, :product_id, :quantity, :unit_price_cents, :line_total_cents, :created_at)`, item)
		if err != nil {
			return apperr.Unexpected("failed to insert order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Unexpected("failed to commit order", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o := &Order{}
	err := r.db.GetContext(ctx, o, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to load order", err)
	}

	o.Items = []*OrderItem{}
	err = r.db.SelectContext(ctx, &o.Items, r.db.Rebind(`
		SELECT id, order_id, product_id, quantity, unit_price_cents, line_total_cents, created_at
		FROM order_items WHERE order_id = ? ORDER BY created_at ASC, id ASC`), id)
	if err != nil {
		return nil, apperr.Unexpected("failed to load order items", err)
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	orders := []*Order{}
	err := r.db.SelectContext(ctx, &orders, r.db.Rebind(`
		SELECT `+orderColumns+` FROM orders WHERE customer_id = ? ORDER BY created_at DESC`), customerID)
	if err != nil {
		return nil, apperr.Unexpected("failed to list orders", err)
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`), to, at, id, from)
	if err != nil {
		return apperr.Unexpected("failed to update order status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflict("order status changed, reload and try again")
	}
	return nil
}

type deliveryRow struct {
	ID              uuid.UUID   `db:"id"`
	OrderNumber     string      `db:"order_number"`
	Status          OrderStatus `db:"status"`
	DeliveryDate    time.Time   `db:"delivery_date"`
	DeliveryZoneID  uuid.UUID   `db:"delivery_zone_id"`
	DeliveryAddress *Address    `db:"delivery_address"`
	TotalCents      int64       `db:"total_cents"`
	Email           string      `db:"email"`
	FirstName       string      `db:"first_name"`
	LastName        string      `db:"last_name"`
}

type deliveryItemRow struct {
	OrderID     uuid.UUID      `db:"order_id"`
	ProductID   uuid.UUID      `db:"product_id"`
	ProductName string         `db:"product_name"`
	Quantity    int            `db:"quantity"`
	Images      pq.StringArray `db:"images"`
}

func (r *postgresRepo) ListActiveDeliveries(ctx context.Context, zoneIDs []uuid.UUID) ([]*OrderSummary, error) {
	if len(zoneIDs) == 0 {
		return []*OrderSummary{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT o.id, o.order_number, o.status, o.delivery_date, o.delivery_zone_id,
		       o.delivery_address, o.total_cents, u.email,
		       COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		WHERE o.delivery_zone_id IN (?)
		  AND o.status IN (?)
		  AND o.type = ?
		  AND o.delivery_date IS NOT NULL
		ORDER BY o.delivery_date ASC, o.created_at ASC, o.id ASC`,
		zoneIDs, ActiveDeliveryStatuses, TypeDelivery)
	if err != nil {
		return nil, err
	}
	rows := []*deliveryRow{}
	err = database.WithRetry(ctx, database.ReadRetry, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*OrderSummary, 0, len(rows))
	byID := make(map[uuid.UUID]*OrderSummary, len(rows))
	orderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		s := &OrderSummary{
			ID:              row.ID,
			OrderNumber:     row.OrderNumber,
			Status:          row.Status,
			DeliveryDate:    row.DeliveryDate,
			DeliveryZoneID:  row.DeliveryZoneID,
			CustomerName:    user.DisplayName(row.FirstName, row.LastName, row.Email),
			DeliveryAddress: row.DeliveryAddress,
			TotalCents:      row.TotalCents,
			Items:           []*ItemSummary{},
		}
		summaries = append(summaries, s)
		byID[s.ID] = s
		orderIDs = append(orderIDs, s.ID)
	}
	if len(orderIDs) == 0 {
		return summaries, nil
	}

	query, args, err = sqlx.In(`
		SELECT oi.order_id, oi.product_id, p.name AS product_name, oi.quantity, p.images
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.created_at ASC, oi.id ASC`, orderIDs)
	if err != nil {
		return nil, err
	}
	items := []*deliveryItemRow{}
	err = database.WithRetry(ctx, database.ReadRetry, func(ctx context.Context) error {
		items = items[:0]
		return r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...)
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		var image *string
		if len(it.Images) > 0 {
			image = &it.Images[0]
		}
		byID[it.OrderID].Items = append(byID[it.OrderID].Items, &ItemSummary{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Image:       image,
		})
	}
	return summaries, nil
}
