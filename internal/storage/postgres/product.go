package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, category, stock, image_url, image IS NOT NULL
		FROM products ORDER BY name, id`

	getProductByIDSQL = `SELECT id, name, price, category, stock, image_url, image IS NOT NULL
		FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (id, name, price, category, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateProductSQL = `UPDATE products
		SET name = $2, price = $3, category = $4, stock = $5, image_url = $6
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	setStockSQL = `UPDATE products SET stock = $2 WHERE id = $1`

	setImageSQL = `UPDATE products SET image = $2, image_content_type = $3 WHERE id = $1`

	getImageSQL = `SELECT image_content_type, image FROM products
		WHERE id = $1 AND image IS NOT NULL`
)

var (
	_ product.Repository      = (*ProductRepository)(nil)
	_ product.ImageRepository = (*ProductRepository)(nil)
)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the full catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
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

// Create inserts a new catalog row.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Price, p.Category, p.Stock, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update overwrites the catalog row for p.ID. Uploaded image bytes are
// managed separately via SetImage.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Price, p.Category, p.Stock, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes the catalog row for id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// SetStock overwrites the stock counter for id.
func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	tag, err := r.pool.Exec(ctx, setStockSQL, id, stock)
	if err != nil {
		return fmt.Errorf("setting stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// SetImage stores uploaded image bytes for id.
func (r *ProductRepository) SetImage(ctx context.Context, id string, contentType string, data []byte) error {
	tag, err := r.pool.Exec(ctx, setImageSQL, id, data, contentType)
	if err != nil {
		return fmt.Errorf("setting image for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// GetImage returns the uploaded image for id.
func (r *ProductRepository) GetImage(ctx context.Context, id string) (string, []byte, error) {
	var (
		contentType string
		data        []byte
	)
	err := r.pool.QueryRow(ctx, getImageSQL, id).Scan(&contentType, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, product.ErrNotFound
		}
		return "", nil, fmt.Errorf("getting image for product %q: %w", id, err)
	}
	return contentType, data, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Stock, &p.ImageURL, &p.HasImage)
	p.Price = price
	return p, err
}
