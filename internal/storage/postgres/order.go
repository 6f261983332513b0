package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valmere/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, user_email, lines, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderByIDSQL = `SELECT id, user_id, user_email, lines, created_at
		FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, user_email, lines, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// are append-only; there are no UPDATE or DELETE statements here.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The snapshotted lines are serialized to JSON
// for storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.UserEmail, linesJSON, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		linesJSON []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.UserEmail, &linesJSON, &o.CreatedAt); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order lines: %w", err)
	}
	return o, nil
}
