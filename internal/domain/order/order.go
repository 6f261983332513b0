// Package order holds the immutable purchase record and the snapshot step
// that turns a cart into one.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrUnauthorized is returned when an order is read by someone other
	// than its owner.
	ErrUnauthorized = errors.New("order does not belong to user")
	// ErrEmptyCart is returned when a snapshot is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// Line is a value copy of a product at purchase time plus its quantity.
// It holds no reference back to the catalog: later product edits or
// deletions never alter a historical order.
type Line struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal is quantity times the snapshotted unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is an immutable record of a completed purchase. UserEmail is a
// denormalized copy that survives later changes to the user record.
type Order struct {
	ID        string
	UserID    string
	UserEmail string
	Lines     []Line
	CreatedAt time.Time
}

// Total recomputes the order total from its lines. No total is stored.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Repository defines persistence for orders. Orders are append-only: there
// is no update or delete path.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
