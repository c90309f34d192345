package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// UnlimitedStock is the reserved stock value meaning the item's inventory is
// untracked: no quantity ceiling applies and checkout never decrements it.
const UnlimitedStock = 0

// Product represents a catalog item available for sale.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string

	// Stock is the remaining tracked quantity. UnlimitedStock (zero) means
	// the item is untracked, not out of stock.
	Stock int

	// ImageURL points at an externally hosted image, when one was supplied
	// instead of an upload.
	ImageURL string

	// HasImage reports whether uploaded image bytes exist for this product.
	HasImage bool
}

// Tracked reports whether stock accounting applies to this product.
func (p Product) Tracked() bool {
	return p.Stock != UnlimitedStock
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	// SetStock overwrites the stock counter for a product. Used by checkout
	// to apply decrements computed in the sale service.
	SetStock(ctx context.Context, id string, stock int) error
}

// ImageRepository stores uploaded product image bytes separately from the
// catalog row, keyed by product ID.
type ImageRepository interface {
	SetImage(ctx context.Context, id string, contentType string, data []byte) error
	GetImage(ctx context.Context, id string) (contentType string, data []byte, err error)
}
