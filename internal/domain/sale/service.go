package sale

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no lines.
// Nothing is persisted and no stock changes in that case.
var ErrEmptyCart = errors.New("cart is empty")

// Service finalizes carts into sales: it snapshots the cart, persists the
// sale, decrements tracked stock, and fans the sold lines out to checkout
// recorders.
type Service struct {
	sales     Repository
	products  product.Repository
	recorders []Recorder
	lg        *zap.Logger
	now       func() time.Time
	newID     func() string

	// inflight tracks detached checkout-record goroutines so shutdown can
	// drain them.
	inflight sync.WaitGroup
}

// NewService creates a checkout Service. Recorders are optional; each one
// receives every sold line after a successful checkout.
func NewService(sales Repository, products product.Repository, lg *zap.Logger, recorders ...Recorder) *Service {
	return &Service{
		sales:     sales,
		products:  products,
		recorders: recorders,
		lg:        lg,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Checkout finalizes the cart into an immutable Sale.
//
// Persisting the sale is the only step whose failure aborts checkout. Stock
// decrements and checkout-record fan-out are applied afterwards, best effort:
// their failures are logged and never reverse the already-persisted sale.
// There is deliberately no atomicity across the three steps.
//
// The cart itself is not mutated; the caller clears it after a nil error.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, branchCode string) (*Sale, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	sl := &Sale{
		ID:        s.newID(),
		Items:     c.Items(),
		Total:     c.Total(),
		CreatedAt: s.now(),
	}

	if err := s.sales.Create(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "create sale")
	}

	s.applyStockDecrements(ctx, sl)
	s.recordCheckouts(ctx, sl, branchCode)

	return sl, nil
}

// applyStockDecrements reduces each sold product's stock by the purchased
// quantity. Untracked products (stock at the unlimited sentinel) are left
// alone. Tracked stock is floored at 1 rather than 0: writing a literal zero
// would flip the product into the untracked sentinel state.
func (s *Service) applyStockDecrements(ctx context.Context, sl *Sale) {
	for _, line := range sl.Items {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			s.lg.Warn("stock decrement skipped",
				zap.String("product_id", line.ProductID),
				zap.Error(err),
			)
			continue
		}
		if !p.Tracked() {
			continue
		}

		remaining := p.Stock - line.Quantity
		if remaining < 1 {
			remaining = 1
		}
		if err := s.products.SetStock(ctx, p.ID, remaining); err != nil {
			s.lg.Warn("stock decrement failed",
				zap.String("product_id", p.ID),
				zap.Int("stock", remaining),
				zap.Error(err),
			)
		}
	}
}

// recordCheckouts reports each sold line to every recorder as an independent
// detached call. The checkout response does not wait for them; partial
// failure is logged and not reconciled. The detached context survives the
// request so that an early client disconnect cannot drop records.
func (s *Service) recordCheckouts(ctx context.Context, sl *Sale, branchCode string) {
	if len(s.recorders) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, rec := range s.recorders {
		for _, line := range sl.Items {
			r := CheckoutRecord{
				BranchCode:   branchCode,
				Category:     line.Category,
				ItemName:     line.Name,
				PricePerItem: line.PriceAtSale,
				Quantity:     line.Quantity,
				Total:        line.Subtotal(),
				RecordedAt:   sl.CreatedAt,
			}
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				if err := rec.RecordCheckout(ctx, r); err != nil {
					s.lg.Warn("checkout record failed",
						zap.String("sale_id", sl.ID),
						zap.String("item", r.ItemName),
						zap.Error(err),
					)
				}
			}()
		}
	}
}

// Drain blocks until every detached checkout-record call has finished.
// Called during graceful shutdown.
func (s *Service) Drain() {
	s.inflight.Wait()
}
