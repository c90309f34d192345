package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

const (
	createCheckoutSQL = `INSERT INTO checkout_records
		(branch_code, category, item_name, price_per_item, quantity, total, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listCheckoutsSQL = `SELECT id, branch_code, category, item_name, price_per_item, quantity, total, recorded_at
		FROM checkout_records ORDER BY recorded_at DESC, id DESC`
)

var _ sale.RecordRepository = (*CheckoutRepository)(nil)

// CheckoutRepository implements sale.RecordRepository backed by PostgreSQL.
type CheckoutRepository struct {
	pool *pgxpool.Pool
}

// NewCheckoutRepository returns a CheckoutRepository that uses the given pool.
func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

// RecordCheckout appends one sold line to the checkout history.
func (r *CheckoutRepository) RecordCheckout(ctx context.Context, rec sale.CheckoutRecord) error {
	_, err := r.pool.Exec(ctx, createCheckoutSQL,
		rec.BranchCode, rec.Category, rec.ItemName,
		rec.PricePerItem, rec.Quantity, rec.Total, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("recording checkout for %q: %w", rec.ItemName, err)
	}
	return nil
}

// ListCheckouts returns the checkout history, newest first.
func (r *CheckoutRepository) ListCheckouts(ctx context.Context) ([]sale.CheckoutRecord, error) {
	rows, err := r.pool.Query(ctx, listCheckoutsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing checkout records: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (sale.CheckoutRecord, error) {
		var rec sale.CheckoutRecord
		err := row.Scan(&rec.ID, &rec.BranchCode, &rec.Category, &rec.ItemName,
			&rec.PricePerItem, &rec.Quantity, &rec.Total, &rec.RecordedAt)
		return rec, err
	})
}
