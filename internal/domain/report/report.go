// Package report derives dashboard statistics and the daily sales export from
// the sales history. Everything here is a pure computation over already
// loaded sales; the handlers own fetching.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

// TopProduct is one entry of the best-seller list, counted in units sold.
type TopProduct struct {
	Name  string
	Count int
}

// Stats is the dashboard summary derived from the sales history.
type Stats struct {
	TodaySales   decimal.Decimal
	WeeklySales  decimal.Decimal
	MonthlySales decimal.Decimal
	TopProducts  []TopProduct
}

// topProductLimit caps the best-seller list length.
const topProductLimit = 5

// Compute aggregates sales into dashboard stats relative to now. Today means
// since local midnight; weekly and monthly are rolling 7- and 30-day windows.
func Compute(sales []sale.Sale, now time.Time) Stats {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	st := Stats{
		TodaySales:   decimal.Zero,
		WeeklySales:  decimal.Zero,
		MonthlySales: decimal.Zero,
	}

	units := make(map[string]int)
	for _, s := range sales {
		if !s.CreatedAt.Before(midnight) {
			st.TodaySales = st.TodaySales.Add(s.Total)
		}
		if !s.CreatedAt.Before(weekAgo) {
			st.WeeklySales = st.WeeklySales.Add(s.Total)
		}
		if !s.CreatedAt.Before(monthAgo) {
			st.MonthlySales = st.MonthlySales.Add(s.Total)
		}
		for _, item := range s.Items {
			units[item.Name] += item.Quantity
		}
	}

	st.TopProducts = make([]TopProduct, 0, len(units))
	for name, count := range units {
		st.TopProducts = append(st.TopProducts, TopProduct{Name: name, Count: count})
	}
	sort.Slice(st.TopProducts, func(i, j int) bool {
		if st.TopProducts[i].Count != st.TopProducts[j].Count {
			return st.TopProducts[i].Count > st.TopProducts[j].Count
		}
		return st.TopProducts[i].Name < st.TopProducts[j].Name
	})
	if len(st.TopProducts) > topProductLimit {
		st.TopProducts = st.TopProducts[:topProductLimit]
	}

	return st
}

// InventoryValue sums price times stock over the catalog. Untracked items
// contribute nothing since their quantity is unknown.
func InventoryValue(products []product.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		if !p.Tracked() {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}
