package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

const (
	createSaleSQL = `INSERT INTO sales (id, items, total, created_at)
		VALUES ($1, $2, $3, $4)`

	listSalesSQL = `SELECT id, items, total, created_at FROM sales ORDER BY created_at`
)

var _ sale.Repository = (*SaleRepository)(nil)

// saleItemRow is the JSONB shape of one sold line inside a sale row.
type saleItemRow struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
}

// SaleRepository implements sale.Repository backed by PostgreSQL.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create persists a finalized sale. The line items are serialized to JSON for
// storage in the JSONB column.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	rows := make([]saleItemRow, len(s.Items))
	for i, item := range s.Items {
		rows[i] = saleItemRow(item)
	}
	itemsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling sale items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createSaleSQL, s.ID, itemsJSON, s.Total, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating sale %q: %w", s.ID, err)
	}
	return nil
}

// List returns the full sales history in chronological order.
func (r *SaleRepository) List(ctx context.Context) ([]sale.Sale, error) {
	rows, err := r.pool.Query(ctx, listSalesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return pgx.CollectRows(rows, scanSale)
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s         sale.Sale
		itemsJSON []byte
		total     decimal.Decimal
		createdAt time.Time
	)
	if err := row.Scan(&s.ID, &itemsJSON, &total, &createdAt); err != nil {
		return s, err
	}

	var items []saleItemRow
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return s, fmt.Errorf("unmarshaling sale items: %w", err)
	}
	s.Items = make([]cart.Line, len(items))
	for i, item := range items {
		s.Items[i] = cart.Line(item)
	}
	s.Total = total
	s.CreatedAt = createdAt
	return s, nil
}
