package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

func someSales(n int) []sale.Sale {
	sales := make([]sale.Sale, n)
	for i := range sales {
		sales[i] = sale.Sale{
			ID:        "s",
			Total:     decimal.NewFromInt(int64(i + 1)),
			CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
			Items:     []cart.Line{{Name: "Coffee", Quantity: 1, PriceAtSale: decimal.NewFromInt(int64(i + 1))}},
		}
	}
	return sales
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(someSales(2), decimal.RequireFromString("123.45"))

	assert.Contains(t, prompt, "3 short, actionable business insights")
	assert.Contains(t, prompt, "2026-08-30: total 1.00, items: Coffee")
	assert.Contains(t, prompt, "Total inventory value: 123.45")
}

func TestBuildPrompt_LimitsToRecentSales(t *testing.T) {
	prompt := BuildPrompt(someSales(30), decimal.Zero)

	// The first ten sales (totals 1..10) must be dropped; the last twenty kept.
	assert.NotContains(t, prompt, "total 10.00")
	assert.Contains(t, prompt, "total 11.00")
	assert.Contains(t, prompt, "total 30.00")
}

func TestGeminiGenerator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/models/gemini-test:generateContent")
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)

		_ = json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "- Sell more coffee"}}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "secret", Model: "gemini-test"}, zap.NewNop())

	text, err := g.Insights(context.Background(), someSales(1), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "- Sell more coffee", text)
}

func TestGeminiGenerator_FallbackOnError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "empty candidates",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, Model: "m"}, zap.NewNop())

			text, err := g.Insights(context.Background(), someSales(1), decimal.Zero)
			require.NoError(t, err, "generation failure must degrade, not fail")
			assert.Equal(t, Fallback, text)
		})
	}
}

func TestGeminiGenerator_FallbackWhenUnreachable(t *testing.T) {
	g := NewGeminiGenerator(GeminiConfig{BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: time.Second}, zap.NewNop())

	text, err := g.Insights(context.Background(), nil, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, Fallback, text)
}

func TestStatic(t *testing.T) {
	text, err := Static{}.Insights(context.Background(), nil, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, Fallback, text)
}
