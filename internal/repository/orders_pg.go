// Package repository persists assembled orders. The live cart never touches
// the database; only the immutable order record and its status history do.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/db"
	"coffee-pos/internal/order"
)

// ErrNotFound is returned when no order matches the lookup.
var ErrNotFound = errors.New("order not found")

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    order.Status `json:"status"`
	ChangedBy string       `json:"changed_by"`
	ChangedAt time.Time    `json:"changed_at"`
}

// StoredLine is the persisted projection of a line item: enough for the
// counter and the books, not the full catalog snapshot (the JSON ticket on
// the queue carries that).
type StoredLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// StoredOrder is an order as read back from the database.
type StoredOrder struct {
	Order   order.Order    `json:"order"`
	Lines   []StoredLine   `json:"lines"`
	History []StatusChange `json:"history"`
}

// Orders is the persistence interface the server consumes.
type Orders interface {
	Create(ctx context.Context, o *order.Order) error
	AppendStatus(ctx context.Context, orderID string, st order.Status, changedBy string, at time.Time) error
	GetByNumber(ctx context.Context, number string) (*StoredOrder, error)
}

type ordersPG struct {
	conn *db.Conn
}

// NewOrdersPG returns the Postgres-backed order store.
func NewOrdersPG(conn *db.Conn) Orders {
	return &ordersPG{conn: conn}
}

// Migrate creates the schema when absent.
func Migrate(ctx context.Context, conn *db.Conn) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	order_number  TEXT NOT NULL,
	fulfillment   TEXT NOT NULL,
	table_id      TEXT,
	customer_name TEXT,
	subtotal      NUMERIC(10,2) NOT NULL,
	tax           NUMERIC(10,2) NOT NULL,
	total         NUMERIC(10,2) NOT NULL,
	status        TEXT NOT NULL,
	notes         TEXT,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_number_idx ON orders (order_number);

CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   TEXT NOT NULL REFERENCES orders(id),
	name       TEXT NOT NULL,
	quantity   INT NOT NULL,
	unit_price NUMERIC(10,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_status_log (
	id         BIGSERIAL PRIMARY KEY,
	order_id   TEXT NOT NULL REFERENCES orders(id),
	status     TEXT NOT NULL,
	changed_by TEXT NOT NULL,
	changed_at TIMESTAMPTZ NOT NULL
);`
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate order schema: %w", err)
	}
	return nil
}

// Create writes the order, its items and the initial status-log entry in one
// transaction.
func (r *ordersPG) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
			(id, order_number, fulfillment, table_id, customer_name, subtotal, tax, total, status, notes, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.Number, string(o.Fulfillment), nullable(o.Table), nullable(o.CustomerName),
		o.Subtotal, o.Tax, o.Total, string(o.Status), nullable(o.Notes), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, li := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			o.ID, li.Item.Name, li.Quantity, li.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", li.Item.Name, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, 'pos-server', $3)`,
		o.ID, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendStatus records a transition on the order row and in the log.
func (r *ordersPG) AppendStatus(ctx context.Context, orderID string, st order.Status, changedBy string, at time.Time) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(st), at, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)`,
		orderID, string(st), changedBy, at,
	)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByNumber loads the most recent order with that display number, its
// lines and its status history.
func (r *ordersPG) GetByNumber(ctx context.Context, number string) (*StoredOrder, error) {
	var so StoredOrder
	var table, customer, notes *string
	var fulfillment, status string
	err := r.conn.QueryRow(ctx, `
		SELECT id, order_number, fulfillment, table_id, customer_name,
		       subtotal, tax, total, status, notes, created_at, updated_at
		FROM orders WHERE order_number = $1
		ORDER BY created_at DESC LIMIT 1`, number,
	).Scan(
		&so.Order.ID, &so.Order.Number, &fulfillment, &table, &customer,
		&so.Order.Subtotal, &so.Order.Tax, &so.Order.Total, &status, &notes,
		&so.Order.CreatedAt, &so.Order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	so.Order.Fulfillment = cart.Fulfillment(fulfillment)
	so.Order.Status = order.Status(status)
	so.Order.Table = deref(table)
	so.Order.CustomerName = deref(customer)
	so.Order.Notes = deref(notes)

	rows, err := r.conn.Query(ctx, `
		SELECT name, quantity, unit_price FROM order_items
		WHERE order_id = $1 ORDER BY id`, so.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l StoredLine
		if err := rows.Scan(&l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		so.Lines = append(so.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read order items: %w", err)
	}

	hrows, err := r.conn.Query(ctx, `
		SELECT status, changed_by, changed_at FROM order_status_log
		WHERE order_id = $1 ORDER BY id`, so.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("select status log: %w", err)
	}
	defer hrows.Close()
	for hrows.Next() {
		var h StatusChange
		var st string
		if err := hrows.Scan(&st, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status log: %w", err)
		}
		h.Status = order.Status(st)
		so.History = append(so.History, h)
	}
	if err := hrows.Err(); err != nil {
		return nil, fmt.Errorf("read status log: %w", err)
	}
	return &so, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
