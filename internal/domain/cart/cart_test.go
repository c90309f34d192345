package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

func testProduct(id string, price string, stock int) product.Product {
	return product.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Category: "Snacks",
		Stock:    stock,
	}
}

func TestAdd_NewLine(t *testing.T) {
	c := New()
	p := testProduct("p1", "45", 10)

	c.Add(p)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "Product p1", items[0].Name)
	assert.Equal(t, "Snacks", items[0].Category)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, items[0].PriceAtSale.Equal(decimal.RequireFromString("45")))
}

func TestAdd_SameProductMergesLine(t *testing.T) {
	c := New()
	p := testProduct("p1", "10", 0)

	c.Add(p)
	c.Add(p)
	c.Add(p)

	items := c.Items()
	require.Len(t, items, 1, "adding the same product must never create a second line")
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAdd_PriceSnapshotIsSticky(t *testing.T) {
	c := New()
	p := testProduct("p1", "10", 0)
	c.Add(p)

	// Catalog price changes after the line exists; subsequent adds keep the
	// original snapshot.
	p.Price = decimal.RequireFromString("99")
	c.Add(p)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].PriceAtSale.Equal(decimal.RequireFromString("10")))
	assert.True(t, c.Total().Equal(decimal.RequireFromString("20")))
}

func TestAdd_StockCeiling(t *testing.T) {
	c := New()
	p := testProduct("p1", "10", 3)

	for range 10 {
		c.Add(p)
	}

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity, "quantity must be capped at stock")
}

func TestAdd_UnlimitedStockHasNoCeiling(t *testing.T) {
	c := New()
	p := testProduct("p1", "10", product.UnlimitedStock)

	for range 50 {
		c.Add(p)
	}

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		start   int
		delta   int
		wantQty int
	}{
		{name: "increment", stock: 10, start: 1, delta: 1, wantQty: 2},
		{name: "decrement", stock: 10, start: 3, delta: -1, wantQty: 2},
		{name: "decrement to zero is rejected", stock: 10, start: 1, delta: -1, wantQty: 1},
		{name: "decrement below zero is rejected", stock: 10, start: 2, delta: -5, wantQty: 2},
		{name: "increment past stock is rejected", stock: 3, start: 3, delta: 1, wantQty: 3},
		{name: "jump past stock is rejected", stock: 5, start: 2, delta: 4, wantQty: 2},
		{name: "unlimited stock has no ceiling", stock: product.UnlimitedStock, start: 1, delta: 100, wantQty: 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			p := testProduct("p1", "10", tt.stock)
			c.Add(p)
			c.UpdateQuantity(p, tt.start-1)

			c.UpdateQuantity(p, tt.delta)

			items := c.Items()
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
		})
	}
}

func TestUpdateQuantity_AbsentLineIsNoop(t *testing.T) {
	c := New()
	c.Add(testProduct("p1", "10", 0))

	c.UpdateQuantity(testProduct("ghost", "10", 0), 1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestStockCeilingHoldsAcrossAnySequence(t *testing.T) {
	// No interleaving of Add and UpdateQuantity may push the line above stock.
	c := New()
	p := testProduct("p1", "10", 4)

	c.Add(p)
	c.UpdateQuantity(p, 2)  // 3
	c.Add(p)                // 4
	c.Add(p)                // rejected
	c.UpdateQuantity(p, 1)  // rejected
	c.UpdateQuantity(p, -1) // 3
	c.Add(p)                // 4

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestRemove(t *testing.T) {
	c := New()
	c.Add(testProduct("p1", "10", 0))
	c.Add(testProduct("p2", "20", 0))

	c.Remove("p1")

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	// Removing an absent line changes nothing.
	c.Remove("p1")
	assert.Len(t, c.Items(), 1)
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(testProduct("p1", "10", 0))
	c.Add(testProduct("p2", "20", 0))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())
}

func TestTotal(t *testing.T) {
	c := New()
	pa := testProduct("a", "10", 0)
	pb := testProduct("b", "5", 0)

	c.Add(pa)
	c.Add(pa)
	c.Add(pb)

	assert.True(t, c.Total().Equal(decimal.RequireFromString("25")))
	assert.Equal(t, 3, c.Units())

	// Total is a pure derivation: it follows every mutation.
	c.UpdateQuantity(pb, 2)
	assert.True(t, c.Total().Equal(decimal.RequireFromString("35")))

	c.Remove("a")
	assert.True(t, c.Total().Equal(decimal.RequireFromString("15")))
}

func TestItems_IsolatedCopy(t *testing.T) {
	c := New()
	c.Add(testProduct("p1", "10", 0))

	snapshot := c.Items()
	c.Add(testProduct("p2", "20", 0))
	c.UpdateQuantity(testProduct("p1", "10", 0), 5)

	require.Len(t, snapshot, 1)
	assert.Equal(t, 1, snapshot[0].Quantity, "snapshot must not track later cart mutation")
}

func TestStore_CreatesAndDrops(t *testing.T) {
	s := NewStore()

	s.With("term-1", func(c *Cart) {
		c.Add(testProduct("p1", "10", 0))
	})
	s.With("term-1", func(c *Cart) {
		assert.Equal(t, 1, c.Units())
	})

	// A different ID gets its own cart.
	s.With("term-2", func(c *Cart) {
		assert.True(t, c.IsEmpty())
	})

	s.Drop("term-1")
	s.With("term-1", func(c *Cart) {
		assert.True(t, c.IsEmpty())
	})
}

func TestStore_BusyCartDoesNotBlockOthers(t *testing.T) {
	s := NewStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		// Simulates a checkout in progress on one terminal's cart.
		s.With("till-1", func(c *Cart) {
			close(entered)
			<-release
		})
	}()
	<-entered
	defer close(release)

	done := make(chan struct{})
	go func() {
		s.With("till-2", func(c *Cart) { c.Add(testProduct("p1", "10", 0)) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutation on a different cart blocked behind a busy cart")
	}
}

func TestStore_ConcurrentTerminals(t *testing.T) {
	s := NewStore()
	p := testProduct("p1", "10", 0)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			for range 100 {
				s.With(id, func(c *Cart) { c.Add(p) })
			}
		}()
	}
	wg.Wait()

	for i := range 10 {
		s.With(string(rune('a'+i)), func(c *Cart) {
			assert.Equal(t, 100, c.Units())
		})
	}
}
