package legacy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop())
}

func TestStoreName_AcceptsBothCasings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "camelCase", body: `{"storeName":"Corner Deli"}`, want: "Corner Deli"},
		{name: "PascalCase", body: `{"StoreName":"Corner Deli"}`, want: "Corner Deli"},
		{name: "extra fields ignored", body: `{"message":"ok","StoreName":"Corner Deli"}`, want: "Corner Deli"},
		{name: "missing", body: `{"message":"ok"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/POS/GetStore", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))

			name, err := c.StoreName(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestUpdateStoreName(t *testing.T) {
	var gotBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/POS/UpdateStore", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
	}))

	require.NoError(t, c.UpdateStoreName(context.Background(), "New Name"))
	assert.JSONEq(t, `{"StoreName":"New Name"}`, gotBody)
}

func TestBranches_MixedCasings(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Branch/GetAll", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"branchCode":"MAIN","dateInserted":"2026-01-05T08:00:00Z"},
			{"Id":2,"BranchCode":"PIER-2"}
		]`))
	}))

	branches, err := c.Branches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)

	assert.Equal(t, int64(1), branches[0].ID)
	assert.Equal(t, "MAIN", branches[0].BranchCode)
	assert.Equal(t, time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), branches[0].InsertedAt)

	assert.Equal(t, int64(2), branches[1].ID)
	assert.Equal(t, "PIER-2", branches[1].BranchCode)
	assert.True(t, branches[1].InsertedAt.IsZero())
}

func TestRecordCheckout_QueryParameters(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/BranchCheckout/Create", r.URL.Path)
		q := r.URL.Query()
		got = map[string]string{
			"BranchCode":   q.Get("BranchCode"),
			"Category":     q.Get("Category"),
			"ItemName":     q.Get("ItemName"),
			"PricePerItem": q.Get("PricePerItem"),
			"Quantity":     q.Get("Quantity"),
		}
		assert.Equal(t, int64(0), r.ContentLength, "body must be empty")
	}))

	err := c.RecordCheckout(context.Background(), sale.CheckoutRecord{
		BranchCode:   "MAIN",
		Category:     "Beverage",
		ItemName:     "Iced Tea & Lemon",
		PricePerItem: decimal.RequireFromString("12.50"),
		Quantity:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, "MAIN", got["BranchCode"])
	assert.Equal(t, "Beverage", got["Category"])
	assert.Equal(t, "Iced Tea & Lemon", got["ItemName"])
	assert.Equal(t, "12.5", got["PricePerItem"])
	assert.Equal(t, "3", got["Quantity"])
}

func TestCheckoutHistory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":7,"BranchCode":"MAIN","category":"Food","ItemName":"Bagel","pricePerItem":4.25,"Quantity":2,"total":8.5,"dateCheckOut":"2026-08-29T10:30:00Z"}
		]`))
	}))

	records, err := c.CheckoutHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, "MAIN", r.BranchCode)
	assert.Equal(t, "Food", r.Category)
	assert.Equal(t, "Bagel", r.ItemName)
	assert.True(t, r.PricePerItem.Equal(decimal.RequireFromString("4.25")))
	assert.Equal(t, 2, r.Quantity)
	assert.True(t, r.Total.Equal(decimal.RequireFromString("8.5")))
	assert.Equal(t, time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC), r.RecordedAt)
}

func TestErrorStatusIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.StoreName(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for range 5 {
		_, err := c.StoreName(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, 5, calls)

	// Breaker is now open: calls fail fast without reaching the server.
	_, err := c.StoreName(context.Background())
	require.Error(t, err)
	assert.Equal(t, 5, calls)
}
