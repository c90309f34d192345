package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/store"
)

type settingsDTO struct {
	StoreName   string `json:"storeName"`
	ThemeMode   string `json:"themeMode"`
	AccentColor string `json:"accentColor"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.GetSettings(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, settingsDTO{
		StoreName:   s.StoreName,
		ThemeMode:   string(s.ThemeMode),
		AccentColor: s.AccentColor,
	})
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsDTO
	if !decodeBody(w, r, &req) {
		return
	}
	mode := store.ThemeMode(req.ThemeMode)
	if mode != store.ThemeLight && mode != store.ThemeDark {
		respondError(w, r, http.StatusBadRequest, "themeMode must be light or dark")
		return
	}
	if req.StoreName == "" {
		respondError(w, r, http.StatusBadRequest, "storeName is required")
		return
	}

	s := store.Settings{
		StoreName:   req.StoreName,
		ThemeMode:   mode,
		AccentColor: req.AccentColor,
	}
	if err := h.settings.UpdateSettings(r.Context(), s); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, req)
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListCategories(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO(c))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.categories.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCategory) {
			respondError(w, r, http.StatusConflict, "category already exists")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, categoryDTO(*c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.categories.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCategoryNotFound):
			respondError(w, r, http.StatusNotFound, "category not found")
		case errors.Is(err, store.ErrDuplicateCategory):
			respondError(w, r, http.StatusConflict, "category already exists")
		default:
			respondInternal(w, r, err)
		}
		return
	}
	respondJSON(w, r, http.StatusOK, categoryDTO(*c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			respondError(w, r, http.StatusNotFound, "category not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type branchDTO struct {
	ID         int64     `json:"id"`
	BranchCode string    `json:"branchCode"`
	InsertedAt time.Time `json:"insertedAt"`
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.branches.ListBranches(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	out := make([]branchDTO, 0, len(branches))
	for _, b := range branches {
		out = append(out, branchDTO(b))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchCode string `json:"branchCode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.BranchCode == "" {
		respondError(w, r, http.StatusBadRequest, "branchCode is required")
		return
	}

	b, err := h.branches.CreateBranch(r.Context(), req.BranchCode)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, branchDTO(*b))
}

func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		BranchCode string `json:"branchCode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.BranchCode == "" {
		respondError(w, r, http.StatusBadRequest, "branchCode is required")
		return
	}

	b, err := h.branches.UpdateBranch(r.Context(), id, req.BranchCode)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			respondError(w, r, http.StatusNotFound, "branch not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, branchDTO(*b))
}

func (h *Handler) deleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.branches.DeleteBranch(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			respondError(w, r, http.StatusNotFound, "branch not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// resetAll wipes every stored collection. Only backends that can start over
// from scratch offer it; elsewhere the route does not exist.
func (h *Handler) resetAll(w http.ResponseWriter, r *http.Request) {
	if h.resetter == nil {
		respondError(w, r, http.StatusNotFound, "reset not supported by this storage backend")
		return
	}
	if err := h.resetter.Reset(r.Context()); err != nil {
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Legacy bridge routes. The bridge fails soft upstream; here its errors map
// to 502 so operators can tell local faults from legacy ones.

func (h *Handler) legacyStoreName(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, r, http.StatusNotFound, "legacy bridge not configured")
		return
	}
	name, err := h.bridge.StoreName(r.Context())
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"storeName": name})
}

func (h *Handler) legacyUpdateStoreName(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, r, http.StatusNotFound, "legacy bridge not configured")
		return
	}
	var req struct {
		StoreName string `json:"storeName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.StoreName == "" {
		respondError(w, r, http.StatusBadRequest, "storeName is required")
		return
	}
	if err := h.bridge.UpdateStoreName(r.Context(), req.StoreName); err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"storeName": req.StoreName})
}

func (h *Handler) legacyBranches(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, r, http.StatusNotFound, "legacy bridge not configured")
		return
	}
	branches, err := h.bridge.Branches(r.Context())
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	out := make([]branchDTO, 0, len(branches))
	for _, b := range branches {
		out = append(out, branchDTO(b))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) legacyCheckouts(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, r, http.StatusNotFound, "legacy bridge not configured")
		return
	}
	recs, err := h.bridge.CheckoutHistory(r.Context())
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCheckoutDTOs(recs))
}

func (h *Handler) respondLegacyError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Warn("Legacy bridge call failed", zap.Error(err))
	respondError(w, r, http.StatusBadGateway, "legacy backend unavailable")
}
