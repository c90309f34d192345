package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

// ErrNoSalesToday is returned when the daily export window contains no sales.
var ErrNoSalesToday = errors.New("no sales recorded today")

// csvHeader matches the column set the store's back office has always
// imported; keep it stable.
var csvHeader = []string{"OrderID", "dateTime", "Category", "Item", "Quantity", "Price per item", "Total"}

// WriteDailyCSV writes today's sales as CSV: one row per sold line, followed
// by a blank row and a grand-total row. Today means since local midnight
// relative to now.
func WriteDailyCSV(w io.Writer, sales []sale.Sale, now time.Time) error {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var today []sale.Sale
	for _, s := range sales {
		if !s.CreatedAt.Before(midnight) {
			today = append(today, s)
		}
	}
	if len(today) == 0 {
		return ErrNoSalesToday
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write header")
	}

	grandTotal := decimal.Zero
	for _, s := range today {
		when := s.CreatedAt.Format("2006-01-02 15:04:05")
		for _, item := range s.Items {
			lineTotal := item.Subtotal()
			category := item.Category
			if category == "" {
				category = "Uncategorized"
			}
			row := []string{
				s.ID,
				when,
				category,
				item.Name,
				fmt.Sprintf("%d", item.Quantity),
				item.PriceAtSale.StringFixed(2),
				lineTotal.StringFixed(2),
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "write row")
			}
			grandTotal = grandTotal.Add(lineTotal)
		}
	}

	// Spacer plus grand-total footer, same shape the legacy export produced.
	if err := cw.Write([]string{"", "", "", "", "", "", ""}); err != nil {
		return errors.Wrap(err, "write spacer")
	}
	if err := cw.Write([]string{"", "", "", "", "", "Grand Total Today", grandTotal.StringFixed(2)}); err != nil {
		return errors.Wrap(err, "write footer")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}
