// Package cart implements the in-progress sale: line items, running totals,
// and the stock ceiling rules applied on every mutation.
//
// Every constraint violation (stock ceiling reached, unknown line, quantity
// underflow) is a silent no-op rather than an error. The register UI treats
// a rejected tap as "nothing happened"; surfacing errors here would only
// force callers to ignore them.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

// Line is one row of an open cart: a product reference plus the quantity and
// the price snapshot captured when the product was first added. Later catalog
// price changes never affect an open cart.
type Line struct {
	ProductID   string
	Name        string
	Category    string
	Quantity    int
	PriceAtSale decimal.Decimal
}

// Subtotal returns PriceAtSale multiplied by Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.PriceAtSale.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the ordered line items of one in-progress transaction.
// A cart is not safe for concurrent use; Store serializes access per cart.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p into the cart. If a line for p already exists its
// quantity is incremented, unless the product tracks stock and the line has
// already reached it; then nothing changes. A new line snapshots the
// product's name, category, and price as of this call.
func (c *Cart) Add(p product.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID != p.ID {
			continue
		}
		if p.Tracked() && c.lines[i].Quantity >= p.Stock {
			return
		}
		c.lines[i].Quantity++
		return
	}

	c.lines = append(c.lines, Line{
		ProductID:   p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Quantity:    1,
		PriceAtSale: p.Price,
	})
}

// UpdateQuantity adjusts the line for p by delta. The adjustment is dropped
// when no line exists, when it would take the quantity to zero or below
// (removal is only ever explicit, via Remove), or when it would exceed the
// product's tracked stock.
func (c *Cart) UpdateQuantity(p product.Product, delta int) {
	for i := range c.lines {
		if c.lines[i].ProductID != p.ID {
			continue
		}
		newQty := c.lines[i].Quantity + delta
		if newQty <= 0 {
			return
		}
		if p.Tracked() && newQty > p.Stock {
			return
		}
		c.lines[i].Quantity = newQty
		return
	}
}

// Remove deletes the line for productID, if present.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Items returns a copy of the cart's lines. Mutating the returned slice does
// not affect the cart, and later cart mutation does not affect the copy.
func (c *Cart) Items() []Line {
	items := make([]Line, len(c.lines))
	copy(items, c.lines)
	return items
}

// Units returns the total unit count across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total derives the cart total as the sum of every line's subtotal. The value
// is recomputed on each call and never stored on the cart itself.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
