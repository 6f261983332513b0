package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/domain/product"
)

const (
	countProductsSQL = `SELECT count(*) FROM products`

	listProductsSQL = `SELECT id, title, description, price, image_url, merchant_id
		FROM products ORDER BY title, id LIMIT $1 OFFSET $2`

	getProductByIDSQL = `SELECT id, title, description, price, image_url, merchant_id
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, title, description, price, image_url, merchant_id
		FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products (id, title, description, price, image_url, merchant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image_url = EXCLUDED.image_url`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListPage returns one catalog page plus the total product count.
func (r *ProductRepository) ListPage(ctx context.Context, page, pageSize int) (product.Page, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&total); err != nil {
		return product.Page{}, fmt.Errorf("counting products: %w", err)
	}

	rows, err := r.pool.Query(ctx, listProductsSQL, pageSize, (page-1)*pageSize)
	if err != nil {
		return product.Page{}, fmt.Errorf("listing products: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return product.Page{}, fmt.Errorf("listing products: %w", err)
	}

	return product.Page{Items: items, TotalCount: total}, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Upsert inserts or refreshes a product. Used by the seeding tool; the
// serving path never writes the catalog.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Title, p.Description, p.Price, p.ImageURL, p.MerchantID,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.ImageURL, &p.MerchantID)
	p.Price = price
	return p, err
}
