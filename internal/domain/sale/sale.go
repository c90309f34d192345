package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
)

// Sale is the immutable record produced at checkout: a snapshot of the cart's
// lines, the total at construction time, and a completion timestamp. Once
// created it is never mutated.
type Sale struct {
	ID        string
	Items     []cart.Line
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Repository defines persistence operations for the sales history.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	List(ctx context.Context) ([]Sale, error)
}

// CheckoutRecord is one sold line attributed to a branch, kept as a separate
// per-item history alongside the sale itself.
type CheckoutRecord struct {
	ID           int64
	BranchCode   string
	Category     string
	ItemName     string
	PricePerItem decimal.Decimal
	Quantity     int
	Total        decimal.Decimal
	RecordedAt   time.Time
}

// Recorder receives one checkout record per sold line after a sale completes.
// Recording is best effort; implementations must not assume their failure
// reverses the sale.
type Recorder interface {
	RecordCheckout(ctx context.Context, rec CheckoutRecord) error
}

// RecordRepository reads back locally stored checkout records.
type RecordRepository interface {
	Recorder
	ListCheckouts(ctx context.Context) ([]CheckoutRecord, error)
}
