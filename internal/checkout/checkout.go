// Package checkout builds hosted payment sessions from a resolved cart.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/domain/cart"
	"github.com/valmere/storefront/internal/domain/product"
)

// ErrPaymentInitiation is returned when the payment collaborator refuses or
// fails to create a session. Local state is never touched in that case.
var ErrPaymentInitiation = errors.New("payment session initiation failed")

// LineItem is one cart line in the payment provider's shape. UnitAmount is
// in minor currency units (price times 100).
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
}

// Session is the provider's opaque handle for one checkout attempt.
type Session struct {
	ID          string
	RedirectURL string
}

// Provider is the external payment collaborator. The wire protocol behind
// it is out of scope for this engine.
type Provider interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (*Session, error)
	// ConfirmSession reports whether the session was completed and paid.
	// The success redirect alone is not trusted.
	ConfirmSession(ctx context.Context, sessionID string) (bool, error)
}

// Builder turns a cart into a payment session. Building a session is
// read-only with respect to the cart: nothing is mutated until the order
// snapshot runs on confirmation.
type Builder struct {
	products product.Repository
	provider Provider
	currency string
}

// NewBuilder creates a Builder charging in the given ISO currency code.
func NewBuilder(products product.Repository, provider Provider, currency string) *Builder {
	return &Builder{
		products: products,
		provider: provider,
		currency: currency,
	}
}

// Checkout is the outcome of a successful session creation. Total is the
// display total computed locally; the provider does its own arithmetic and
// the two must agree, but neither reads the other.
type Checkout struct {
	Session Session
	Items   []LineItem
	Total   decimal.Decimal
}

// Build resolves the cart, maps every line to a provider line item, and
// asks the provider for a session handle.
func (b *Builder) Build(ctx context.Context, c cart.Cart, successURL, cancelURL string) (*Checkout, error) {
	resolved, err := cart.Resolve(ctx, c, b.products)
	if err != nil {
		return nil, errors.Wrap(err, "resolve cart")
	}
	if len(resolved) == 0 {
		return nil, errors.New("cart is empty")
	}

	items := make([]LineItem, len(resolved))
	for i, rl := range resolved {
		items[i] = LineItem{
			Name:        rl.Product.Title,
			Description: rl.Product.Description,
			UnitAmount:  rl.Product.Price.Mul(decimal.NewFromInt(100)).IntPart(),
			Currency:    b.currency,
			Quantity:    rl.Quantity,
		}
	}

	session, err := b.provider.CreateSession(ctx, items, successURL, cancelURL)
	if err != nil {
		return nil, errors.Wrapf(ErrPaymentInitiation, "create session: %v", err)
	}

	return &Checkout{
		Session: *session,
		Items:   items,
		Total:   cart.Total(resolved),
	}, nil
}

// Confirm asks the provider whether the given session completed payment.
func (b *Builder) Confirm(ctx context.Context, sessionID string) (bool, error) {
	return b.provider.ConfirmSession(ctx, sessionID)
}
