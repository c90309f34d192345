package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/report"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	out := make([]saleDTO, 0, len(sales))
	for _, s := range sales {
		out = append(out, saleDTO{
			ID:        s.ID,
			Items:     toLineDTOs(s.Items),
			Total:     s.Total,
			CreatedAt: s.CreatedAt,
		})
	}
	respondJSON(w, r, http.StatusOK, out)
}

type checkoutDTO struct {
	ID           int64           `json:"id"`
	BranchCode   string          `json:"branchCode"`
	Category     string          `json:"category"`
	ItemName     string          `json:"itemName"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	RecordedAt   time.Time       `json:"recordedAt"`
}

func toCheckoutDTOs(recs []sale.CheckoutRecord) []checkoutDTO {
	out := make([]checkoutDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, checkoutDTO(rec))
	}
	return out
}

func (h *Handler) listCheckouts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.records.ListCheckouts(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCheckoutDTOs(recs))
}

type statsDTO struct {
	TodaySales   decimal.Decimal `json:"todaySales"`
	WeeklySales  decimal.Decimal `json:"weeklySales"`
	MonthlySales decimal.Decimal `json:"monthlySales"`
	TopProducts  []topProductDTO `json:"topProducts"`
}

type topProductDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	st := report.Compute(sales, h.now())

	dto := statsDTO{
		TodaySales:   st.TodaySales,
		WeeklySales:  st.WeeklySales,
		MonthlySales: st.MonthlySales,
		TopProducts:  make([]topProductDTO, 0, len(st.TopProducts)),
	}
	for _, tp := range st.TopProducts {
		dto.TopProducts = append(dto.TopProducts, topProductDTO(tp))
	}
	respondJSON(w, r, http.StatusOK, dto)
}

// dailyReportCSV streams today's sales as a CSV download, gzip-compressed
// when the client accepts it.
func (h *Handler) dailyReportCSV(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	now := h.now()
	filename := "sales-" + now.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	var out io.Writer = w
	var gz *pgzip.Writer
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz = pgzip.NewWriter(w)
		out = gz
	}

	if err := report.WriteDailyCSV(out, sales, now); err != nil {
		// The export fails before its first write, so the response is still
		// uncommitted; closing gz here would commit it.
		w.Header().Del("Content-Encoding")
		w.Header().Del("Content-Disposition")
		if errors.Is(err, report.ErrNoSalesToday) {
			respondError(w, r, http.StatusNotFound, "no sales recorded today")
			return
		}
		respondInternal(w, r, err)
		return
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			respondInternal(w, r, err)
		}
	}
}

func (h *Handler) getInsights(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	products, err := h.products.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	text, err := h.insights.Insights(r.Context(), sales, report.InventoryValue(products))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"insights": text})
}
