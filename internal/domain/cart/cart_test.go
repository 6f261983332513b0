package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valmere/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]product.Product
	getErr error
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
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

func newProduct(id, title, price string) product.Product {
	return product.Product{
		ID:          id,
		Title:       title,
		Description: "test product",
		Price:       decimal.RequireFromString(price),
		MerchantID:  "m1",
	}
}

// --- Tests ---

func TestAdd_MergesRepeatedProduct(t *testing.T) {
	p := newProduct("p1", "Widget", "10.00")

	var c Cart
	c.Add(p)
	c.Add(p)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p1", c.Lines[0].ProductID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAdd_KeepsInsertionOrder(t *testing.T) {
	a := newProduct("a", "First", "1.00")
	b := newProduct("b", "Second", "2.00")

	var c Cart
	c.Add(a)
	c.Add(b)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, []Line{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 1}}, c.Lines)

	c.Remove("a")
	assert.Equal(t, []Line{{ProductID: "b", Quantity: 1}}, c.Lines)
}

func TestRemove_AbsentProductIsNoOp(t *testing.T) {
	var c Cart
	c.Add(newProduct("p1", "Widget", "10.00"))
	before := append([]Line(nil), c.Lines...)

	c.Remove("missing")

	assert.Equal(t, before, c.Lines)
}

func TestRemove_DropsWholeLine(t *testing.T) {
	p := newProduct("p1", "Widget", "10.00")

	var c Cart
	c.Add(p)
	c.Add(p)
	c.Add(p)
	c.Remove("p1")

	assert.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	var c Cart
	c.Add(newProduct("p1", "Widget", "10.00"))
	c.Add(newProduct("p2", "Gadget", "5.50"))

	c.Clear()

	assert.True(t, c.IsEmpty())
}

func TestResolve(t *testing.T) {
	p1 := newProduct("p1", "Widget", "10.00")
	p2 := newProduct("p2", "Gadget", "5.50")
	repo := newRepo(p1, p2)

	var c Cart
	c.Add(p1)
	c.Add(p1)
	c.Add(p2)

	resolved, err := Resolve(context.Background(), c, repo)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "Widget", resolved[0].Product.Title)
	assert.Equal(t, 2, resolved[0].Quantity)
	assert.True(t, decimal.RequireFromString("20.00").Equal(resolved[0].Subtotal()))

	assert.True(t, decimal.RequireFromString("25.50").Equal(Total(resolved)))
}

func TestResolve_MissingProduct(t *testing.T) {
	p1 := newProduct("p1", "Widget", "10.00")
	repo := newRepo(p1)

	var c Cart
	c.Add(p1)
	c.Add(newProduct("gone", "Deleted", "1.00"))

	_, err := Resolve(context.Background(), c, repo)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestResolve_EmptyCart(t *testing.T) {
	resolved, err := Resolve(context.Background(), Cart{}, newRepo())
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolve_RepositoryError(t *testing.T) {
	repo := &mockProductRepo{getErr: errors.New("db down")}

	var c Cart
	c.Add(newProduct("p1", "Widget", "10.00"))

	_, err := Resolve(context.Background(), c, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get products")
}
