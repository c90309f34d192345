// Package handler exposes the POS over JSON REST for register terminals.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
	"github.com/swiftpos/swiftpos/internal/domain/store"
	"github.com/swiftpos/swiftpos/internal/insight"
	"github.com/swiftpos/swiftpos/internal/legacy"
)

// Resetter wipes every stored collection back to an empty state. Only the
// file-backed store supports it.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler serves the POS API, delegating business logic to the domain
// packages. The legacy bridge and resetter are optional; their routes respond
// 404 when the dependency is not configured.
type Handler struct {
	products   product.Repository
	images     product.ImageRepository
	carts      *cart.Store
	checkout   *sale.Service
	sales      sale.Repository
	records    sale.RecordRepository
	settings   store.SettingsRepository
	categories store.CategoryRepository
	branches   store.BranchRepository
	insights   insight.Generator
	bridge     *legacy.Client
	resetter   Resetter

	now func() time.Time
}

// Deps collects the Handler's dependencies. Bridge may be nil.
type Deps struct {
	Products   product.Repository
	Images     product.ImageRepository
	Carts      *cart.Store
	Checkout   *sale.Service
	Sales      sale.Repository
	Records    sale.RecordRepository
	Settings   store.SettingsRepository
	Categories store.CategoryRepository
	Branches   store.BranchRepository
	Insights   insight.Generator
	Bridge     *legacy.Client
	Resetter   Resetter
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{
		products:   d.Products,
		images:     d.Images,
		carts:      d.Carts,
		checkout:   d.Checkout,
		sales:      d.Sales,
		records:    d.Records,
		settings:   d.Settings,
		categories: d.Categories,
		branches:   d.Branches,
		insights:   d.Insights,
		bridge:     d.Bridge,
		resetter:   d.Resetter,
		now:        time.Now,
	}
}

// Routes mounts every API route onto a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Post("/{id}/image", h.uploadProductImage)
			r.Get("/{id}/image", h.getProductImage)
		})

		r.Route("/carts/{cartID}", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{productID}", h.updateCartItem)
			r.Delete("/items/{productID}", h.removeCartItem)
			r.Post("/checkout", h.checkoutCart)
		})

		r.Get("/sales", h.listSales)
		r.Get("/checkouts", h.listCheckouts)
		r.Get("/stats", h.getStats)
		r.Get("/reports/daily.csv", h.dailyReportCSV)
		r.Get("/insights", h.getInsights)

		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", h.listBranches)
			r.Post("/", h.createBranch)
			r.Put("/{id}", h.updateBranch)
			r.Delete("/{id}", h.deleteBranch)
		})

		r.Post("/admin/reset", h.resetAll)

		r.Route("/legacy", func(r chi.Router) {
			r.Get("/store-name", h.legacyStoreName)
			r.Put("/store-name", h.legacyUpdateStoreName)
			r.Get("/branches", h.legacyBranches)
			r.Get("/checkouts", h.legacyCheckouts)
		})
	})

	return r
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("Response encode failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

// respondInternal logs err and hides its detail from the client.
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, r, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeLenient decodes an optional JSON body; an empty body is fine.
func decodeLenient(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}
