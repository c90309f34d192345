package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

type cartLineDTO struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type cartDTO struct {
	ID    string          `json:"id"`
	Items []cartLineDTO   `json:"items"`
	Units int             `json:"units"`
	Total decimal.Decimal `json:"total"`
}

type saleDTO struct {
	ID        string          `json:"id"`
	Items     []cartLineDTO   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toLineDTOs(lines []cart.Line) []cartLineDTO {
	out := make([]cartLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineDTO{
			ProductID:   l.ProductID,
			Name:        l.Name,
			Category:    l.Category,
			Quantity:    l.Quantity,
			PriceAtSale: l.PriceAtSale,
			Subtotal:    l.Subtotal(),
		})
	}
	return out
}

// snapshotCart renders the cart under its store lock.
func (h *Handler) snapshotCart(id string) cartDTO {
	dto := cartDTO{ID: id}
	h.carts.With(id, func(c *cart.Cart) {
		dto.Items = toLineDTOs(c.Items())
		dto.Units = c.Units()
		dto.Total = c.Total()
	})
	return dto
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.snapshotCart(chi.URLParam(r, "cartID")))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cartID")
	h.carts.With(id, func(c *cart.Cart) { c.Clear() })
	respondJSON(w, r, http.StatusOK, h.snapshotCart(id))
}

// addCartItem adds one unit of a product. A stock-ceiling rejection is not an
// error: the response is 200 with the unchanged cart.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	id := chi.URLParam(r, "cartID")
	h.carts.With(id, func(c *cart.Cart) { c.Add(*p) })
	respondJSON(w, r, http.StatusOK, h.snapshotCart(id))
}

// updateCartItem adjusts a line quantity by a signed delta. Rejected
// adjustments (missing line, underflow, ceiling) leave the cart unchanged
// and still return 200.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	id := chi.URLParam(r, "cartID")
	h.carts.With(id, func(c *cart.Cart) { c.UpdateQuantity(*p, req.Delta) })
	respondJSON(w, r, http.StatusOK, h.snapshotCart(id))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cartID")
	productID := chi.URLParam(r, "productID")
	h.carts.With(id, func(c *cart.Cart) { c.Remove(productID) })
	respondJSON(w, r, http.StatusOK, h.snapshotCart(id))
}

// checkoutCart finalizes the cart into a sale. The cart is cleared only after
// the sale persisted; it then carries on as an empty open cart.
func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchCode string `json:"branchCode"`
	}
	// Body is optional; a missing branch code attributes nothing.
	_ = decodeLenient(r, &req)

	id := chi.URLParam(r, "cartID")

	var (
		result *sale.Sale
		err    error
	)
	h.carts.With(id, func(c *cart.Cart) {
		result, err = h.checkout.Checkout(r.Context(), c, req.BranchCode)
		if err == nil {
			c.Clear()
		}
	})
	if err != nil {
		if errors.Is(err, sale.ErrEmptyCart) {
			respondError(w, r, http.StatusBadRequest, "cart is empty")
			return
		}
		respondInternal(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, saleDTO{
		ID:        result.ID,
		Items:     toLineDTOs(result.Items),
		Total:     result.Total,
		CreatedAt: result.CreatedAt,
	})
}
