package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/valmere/storefront/internal/domain/cart"
	"github.com/valmere/storefront/internal/domain/product"
	"github.com/valmere/storefront/internal/domain/user"
)

// Notifier is told about newly persisted orders. Implementations must not
// fail the purchase: errors are reported by the implementation itself.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, *Order) {}

// Snapshotter converts a populated cart into an immutable order.
type Snapshotter struct {
	products product.Repository
	orders   Repository
	users    user.Repository
	notify   Notifier
}

// NewSnapshotter creates a Snapshotter with the required dependencies.
// notify may be nil.
func NewSnapshotter(
	products product.Repository,
	orders Repository,
	users user.Repository,
	notify Notifier,
) *Snapshotter {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Snapshotter{
		products: products,
		orders:   orders,
		users:    users,
		notify:   notify,
	}
}

// Snapshot resolves the user's cart against the catalog, persists a
// value-copied order, and only then clears the cart. The ordering is the
// engine's central correctness property: if the order write fails, the cart
// must survive untouched.
func (s *Snapshotter) Snapshot(ctx context.Context, u *user.User) (*Order, error) {
	if u.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	resolved, err := cart.Resolve(ctx, u.Cart, s.products)
	if err != nil {
		return nil, errors.Wrap(err, "resolve cart")
	}

	lines := make([]Line, len(resolved))
	for i, rl := range resolved {
		lines[i] = Line{
			Title:       rl.Product.Title,
			Description: rl.Product.Description,
			UnitPrice:   rl.Product.Price,
			Quantity:    rl.Quantity,
		}
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		UserEmail: u.Email,
		Lines:     lines,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.notify.OrderCreated(ctx, o)

	u.Cart.Clear()
	if err := s.users.UpdateCart(ctx, u.ID, u.Cart); err != nil {
		// The order exists; the stale cart is an inconsistency the caller
		// must surface, not a reason to undo the purchase.
		return o, errors.Wrap(err, "clear cart")
	}
	return o, nil
}

// GetForUser fetches an order by ID and enforces that requesterID owns it.
func (s *Snapshotter) GetForUser(ctx context.Context, orderID, requesterID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

// History returns the requesting user's orders.
func (s *Snapshotter) History(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
