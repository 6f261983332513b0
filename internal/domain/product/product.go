package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. The cart and order engine treats it as
// read-only; mutation happens through an unrelated admin workflow.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	MerchantID  string
}

// Page is one page of catalog listing results.
type Page struct {
	Items      []Product
	TotalCount int
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// ListPage returns the given page (1-based) of the catalog plus the
	// total item count, ordered by title.
	ListPage(ctx context.Context, page, pageSize int) (Page, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
