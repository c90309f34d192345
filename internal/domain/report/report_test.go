package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

var testNow = time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

func mkSale(id string, at time.Time, total string, items ...cart.Line) sale.Sale {
	return sale.Sale{
		ID:        id,
		Items:     items,
		Total:     decimal.RequireFromString(total),
		CreatedAt: at,
	}
}

func mkLine(name, category string, qty int, price string) cart.Line {
	return cart.Line{
		ProductID:   strings.ToLower(name),
		Name:        name,
		Category:    category,
		Quantity:    qty,
		PriceAtSale: decimal.RequireFromString(price),
	}
}

func TestCompute_Windows(t *testing.T) {
	sales := []sale.Sale{
		mkSale("s1", testNow.Add(-time.Hour), "100"),          // today
		mkSale("s2", testNow.Add(-48*time.Hour), "50"),        // this week
		mkSale("s3", testNow.AddDate(0, 0, -20), "25"),        // this month
		mkSale("s4", testNow.AddDate(0, 0, -40), "1000"),      // outside all windows
		mkSale("s5", testNow.Add(-15*time.Hour), "10"),        // yesterday evening
	}

	st := Compute(sales, testNow)

	assert.True(t, st.TodaySales.Equal(decimal.RequireFromString("100")), "today: got %s", st.TodaySales)
	assert.True(t, st.WeeklySales.Equal(decimal.RequireFromString("160")), "weekly: got %s", st.WeeklySales)
	assert.True(t, st.MonthlySales.Equal(decimal.RequireFromString("185")), "monthly: got %s", st.MonthlySales)
}

func TestCompute_TopProducts(t *testing.T) {
	sales := []sale.Sale{
		mkSale("s1", testNow, "0",
			mkLine("Coffee", "Beverage", 3, "10"),
			mkLine("Croissant", "Food", 1, "5"),
		),
		mkSale("s2", testNow, "0",
			mkLine("Coffee", "Beverage", 2, "10"),
			mkLine("Tea", "Beverage", 2, "8"),
			mkLine("Bagel", "Food", 1, "4"),
			mkLine("Muffin", "Food", 1, "6"),
			mkLine("Water", "Beverage", 1, "2"),
			mkLine("Juice", "Beverage", 1, "7"),
		),
	}

	st := Compute(sales, testNow)

	require.Len(t, st.TopProducts, 5, "list is capped at five entries")
	assert.Equal(t, TopProduct{Name: "Coffee", Count: 5}, st.TopProducts[0])
	assert.Equal(t, TopProduct{Name: "Tea", Count: 2}, st.TopProducts[1])
	// Ties are broken alphabetically so the output is stable.
	assert.Equal(t, "Bagel", st.TopProducts[2].Name)
}

func TestCompute_Empty(t *testing.T) {
	st := Compute(nil, testNow)

	assert.True(t, st.TodaySales.IsZero())
	assert.True(t, st.WeeklySales.IsZero())
	assert.True(t, st.MonthlySales.IsZero())
	assert.Empty(t, st.TopProducts)
}

func TestInventoryValue(t *testing.T) {
	products := []product.Product{
		{ID: "a", Price: decimal.RequireFromString("10"), Stock: 4},
		{ID: "b", Price: decimal.RequireFromString("3"), Stock: product.UnlimitedStock},
		{ID: "c", Price: decimal.RequireFromString("2.50"), Stock: 2},
	}

	v := InventoryValue(products)

	assert.True(t, v.Equal(decimal.RequireFromString("45")), "got %s", v)
}

func TestWriteDailyCSV(t *testing.T) {
	sales := []sale.Sale{
		mkSale("TRX-1", testNow.Add(-2*time.Hour), "25",
			mkLine("Coffee", "Beverage", 2, "10"),
			mkLine("Croissant", "", 1, "5"),
		),
		mkSale("TRX-0", testNow.AddDate(0, 0, -1), "99",
			mkLine("Old", "Food", 1, "99"),
		),
	}

	var sb strings.Builder
	err := WriteDailyCSV(&sb, sales, testNow)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "OrderID,dateTime,Category,Item,Quantity,Price per item,Total", lines[0])
	assert.Equal(t, "TRX-1,2026-08-30 12:00:00,Beverage,Coffee,2,10.00,20.00", lines[1])
	assert.Equal(t, "TRX-1,2026-08-30 12:00:00,Uncategorized,Croissant,1,5.00,5.00", lines[2])
	assert.Equal(t, ",,,,,,", lines[3])
	assert.Equal(t, ",,,,,Grand Total Today,25.00", lines[4])

	// Yesterday's sale is excluded.
	assert.NotContains(t, sb.String(), "TRX-0")
}

func TestWriteDailyCSV_QuotesEmbeddedCommas(t *testing.T) {
	sales := []sale.Sale{
		mkSale("TRX-1", testNow, "12",
			mkLine(`Salt, Coarse "Sea"`, "Groceries", 1, "12"),
		),
	}

	var sb strings.Builder
	err := WriteDailyCSV(&sb, sales, testNow)
	require.NoError(t, err)

	assert.Contains(t, sb.String(), `"Salt, Coarse ""Sea"""`)
}

func TestWriteDailyCSV_NoSalesToday(t *testing.T) {
	sales := []sale.Sale{
		mkSale("TRX-0", testNow.AddDate(0, 0, -2), "10", mkLine("Old", "Food", 1, "10")),
	}

	var sb strings.Builder
	err := WriteDailyCSV(&sb, sales, testNow)

	require.ErrorIs(t, err, ErrNoSalesToday)
	assert.Empty(t, sb.String(), "nothing may be written on the error path")
}
