package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// ListProducts возвращает каталог. Параметр q фильтрует по имени.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.shop.SearchProducts(r.URL.Query().Get("q")))
}

// SuggestProducts возвращает товары в наличии для кассы.
func (h *Handler) SuggestProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.shop.SaleSuggestions(r.URL.Query().Get("q")))
}

// LowStock возвращает товары с низким или нулевым остатком.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.shop.LowStock())
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.shop.Product(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get product", err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// CreateProduct добавляет товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if !h.decode(w, r, &in) {
		return
	}

	p, err := h.shop.AddProduct(r.Context(), in)
	if err != nil {
		h.fail(w, "create product", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p.View())
}

// UpdateProduct частично изменяет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductPatch
	if !h.decode(w, r, &patch) {
		return
	}

	p, err := h.shop.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, "update product", err)
		return
	}
	h.writeJSON(w, http.StatusOK, p.View())
}

// DeleteProduct удаляет товар.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.shop.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
