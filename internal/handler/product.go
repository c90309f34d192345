package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

// maxImageSize caps uploaded product images.
const maxImageSize = 5 << 20

type productDTO struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl,omitempty"`
	HasImage bool            `json:"hasImage"`
}

type productReq struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl"`
}

func (req productReq) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Price.IsNegative():
		return "price must not be negative"
	case req.Stock < 0:
		return "stock must not be negative"
	}
	return ""
}

func toProductDTO(p product.Product) productDTO {
	return productDTO{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
		HasImage: p.HasImage,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductDTO(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	p := product.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toProductDTO(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	p := product.Product{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}
	if err := h.products.Update(r.Context(), &p); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductDTO(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadProductImage accepts a multipart form with an "image" field and
// stores the bytes alongside the product.
func (h *Handler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "image field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	id := chi.URLParam(r, "id")
	if err := h.images.SetImage(r.Context(), id, contentType, data); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProductImage(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := h.images.GetImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "image not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
