// Package insight produces the short free-text business summary shown on the
// dashboard. Generation is best effort: any failure degrades to a canned
// fallback so the dashboard always has something to show.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

// Fallback is returned whenever generation fails.
const Fallback = "Focus on high-margin items. Monitor stock levels closely. Promote bundles for slow-moving categories."

// recentSaleLimit caps how many sales feed the prompt.
const recentSaleLimit = 20

// Generator turns recent sales and the current inventory value into a few
// bullet points of advice.
type Generator interface {
	Insights(ctx context.Context, sales []sale.Sale, inventoryValue decimal.Decimal) (string, error)
}

// BuildPrompt renders the consultant prompt from the last sales and the
// inventory value. Only the trailing recentSaleLimit sales are included.
func BuildPrompt(sales []sale.Sale, inventoryValue decimal.Decimal) string {
	if len(sales) > recentSaleLimit {
		sales = sales[len(sales)-recentSaleLimit:]
	}

	var b strings.Builder
	b.WriteString("As a retail business consultant, analyze these recent sales and provide 3 short, actionable business insights.\n")
	b.WriteString("Sales:\n")
	for _, s := range sales {
		names := make([]string, len(s.Items))
		for i, item := range s.Items {
			names[i] = item.Name
		}
		fmt.Fprintf(&b, "- %s: total %s, items: %s\n",
			s.CreatedAt.Format("2006-01-02"), s.Total.StringFixed(2), strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Total inventory value: %s\n", inventoryValue.StringFixed(2))
	b.WriteString("Return the response as a simple list of 3 bullet points. Be concise.")
	return b.String()
}
