package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valmere/storefront/internal/domain/cart"
	"github.com/valmere/storefront/internal/domain/product"
	"github.com/valmere/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) ListPage(_ context.Context, _, _ int) (product.Page, error) {
	return product.Page{}, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	created   []*Order
	byID      map[string]*Order
	createErr error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, o)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	savedCarts map[string]cart.Cart
	updateErr  error
}

func (m *mockUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) UpdateCart(_ context.Context, userID string, c cart.Cart) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.savedCarts == nil {
		m.savedCarts = make(map[string]cart.Cart)
	}
	m.savedCarts[userID] = c
	return nil
}

func (m *mockUserRepo) UpdateCredentials(_ context.Context, _ *user.User) error { return nil }

// --- Helpers ---

func newTestProduct(id, title, price string) product.Product {
	return product.Product{
		ID:          id,
		Title:       title,
		Description: "desc of " + title,
		Price:       decimal.RequireFromString(price),
		MerchantID:  "m1",
	}
}

func newTestUser(products ...product.Product) *user.User {
	u := &user.User{ID: "u1", Email: "shopper@example.com"}
	for _, p := range products {
		u.Cart.Add(p)
	}
	return u
}

// --- Tests ---

func TestSnapshot(t *testing.T) {
	widget := newTestProduct("p1", "Widget", "10.00")
	gadget := newTestProduct("p2", "Gadget", "5.50")

	products := &mockProductRepo{byID: map[string]product.Product{"p1": widget, "p2": gadget}}
	orders := &mockOrderRepo{}
	users := &mockUserRepo{}
	snap := NewSnapshotter(products, orders, users, nil)

	u := newTestUser(widget, widget, gadget)

	o, err := snap.Snapshot(context.Background(), u)
	require.NoError(t, err)

	require.Len(t, orders.created, 1)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, "shopper@example.com", o.UserEmail)
	assert.False(t, o.CreatedAt.IsZero())

	require.Len(t, o.Lines, 2)
	assert.Equal(t, Line{Title: "Widget", Description: "desc of Widget", UnitPrice: widget.Price, Quantity: 2}, o.Lines[0])
	assert.Equal(t, 1, o.Lines[1].Quantity)

	// Cart cleared and the empty cart persisted.
	assert.True(t, u.Cart.IsEmpty())
	saved, ok := users.savedCarts["u1"]
	require.True(t, ok)
	assert.True(t, saved.IsEmpty())

	assert.True(t, decimal.RequireFromString("25.50").Equal(o.Total()))
}

func TestSnapshot_LinesAreValueCopies(t *testing.T) {
	widget := newTestProduct("p1", "Widget", "10.00")
	products := &mockProductRepo{byID: map[string]product.Product{"p1": widget}}
	orders := &mockOrderRepo{}
	snap := NewSnapshotter(products, orders, &mockUserRepo{}, nil)

	o, err := snap.Snapshot(context.Background(), newTestUser(widget))
	require.NoError(t, err)

	// Mutating the catalog afterwards must not affect the snapshot.
	mutated := widget
	mutated.Title = "Renamed"
	mutated.Price = decimal.RequireFromString("99.99")
	products.byID["p1"] = mutated

	assert.Equal(t, "Widget", o.Lines[0].Title)
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Lines[0].UnitPrice))
}

func TestSnapshot_EmptyCart(t *testing.T) {
	snap := NewSnapshotter(&mockProductRepo{}, &mockOrderRepo{}, &mockUserRepo{}, nil)

	_, err := snap.Snapshot(context.Background(), &user.User{ID: "u1"})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSnapshot_PersistFailureKeepsCart(t *testing.T) {
	widget := newTestProduct("p1", "Widget", "10.00")
	products := &mockProductRepo{byID: map[string]product.Product{"p1": widget}}
	orders := &mockOrderRepo{createErr: errors.New("disk full")}
	users := &mockUserRepo{}
	snap := NewSnapshotter(products, orders, users, nil)

	u := newTestUser(widget)

	_, err := snap.Snapshot(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")

	// The cart survives and was never written back.
	require.Len(t, u.Cart.Lines, 1)
	assert.Empty(t, users.savedCarts)
	assert.Empty(t, orders.created)
}

func TestSnapshot_MissingProduct(t *testing.T) {
	widget := newTestProduct("p1", "Widget", "10.00")
	products := &mockProductRepo{byID: map[string]product.Product{}}
	snap := NewSnapshotter(products, &mockOrderRepo{}, &mockUserRepo{}, nil)

	u := newTestUser(widget)

	_, err := snap.Snapshot(context.Background(), u)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.False(t, u.Cart.IsEmpty())
}

func TestGetForUser_OwnerMismatch(t *testing.T) {
	o := &Order{ID: "o1", UserID: "owner"}
	orders := &mockOrderRepo{byID: map[string]*Order{"o1": o}}
	snap := NewSnapshotter(&mockProductRepo{}, orders, &mockUserRepo{}, nil)

	_, err := snap.GetForUser(context.Background(), "o1", "intruder")
	require.ErrorIs(t, err, ErrUnauthorized)

	got, err := snap.GetForUser(context.Background(), "o1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
}

func TestGetForUser_NotFound(t *testing.T) {
	snap := NewSnapshotter(&mockProductRepo{}, &mockOrderRepo{byID: map[string]*Order{}}, &mockUserRepo{}, nil)

	_, err := snap.GetForUser(context.Background(), "missing", "u1")
	require.ErrorIs(t, err, ErrNotFound)
}
