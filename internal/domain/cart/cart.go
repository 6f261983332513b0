// Package cart holds the per-user shopping cart and its mutation rules.
//
// A cart is a small value type embedded in the user record. Every line
// references a distinct product: adding a product that is already present
// increments that line instead of appending a duplicate.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/domain/product"
)

// Line is one (product, quantity) pairing inside a cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the mutable holding area of intended purchases. Lines keep
// insertion order and hold at most one line per product.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add records one more unit of p. An existing line for the product is
// incremented; otherwise a new line with quantity 1 is appended.
func (c *Cart) Add(p product.Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: p.ID, Quantity: 1})
}

// Remove drops the whole line for the given product, regardless of its
// quantity. Removing a product that is not in the cart is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear resets the cart to empty. Only the order snapshot path calls this,
// and only after the order has been persisted.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ResolvedLine is a cart line joined against the catalog.
type ResolvedLine struct {
	Product  product.Product
	Quantity int
}

// Subtotal is quantity times unit price for this line.
func (l ResolvedLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Resolve joins every cart line against the catalog in a single batch
// fetch. A line whose product no longer exists fails the whole resolution
// with product.ErrNotFound: checkout and snapshotting require every
// reference to be intact.
func Resolve(ctx context.Context, c Cart, products product.Repository) ([]ResolvedLine, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	ids := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		ids[i] = line.ProductID
	}

	fetched, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	resolved := make([]ResolvedLine, len(c.Lines))
	for i, line := range c.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, errors.Wrapf(product.ErrNotFound, "resolve product %s", line.ProductID)
		}
		resolved[i] = ResolvedLine{Product: p, Quantity: line.Quantity}
	}
	return resolved, nil
}

// Total sums quantity times unit price over resolved lines.
func Total(lines []ResolvedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
