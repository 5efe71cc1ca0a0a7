package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// ListUsers возвращает учётные записи без паролей.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.shop.Users())
}

// CreateUser добавляет учётную запись.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in model.UserInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.Role == "" {
		in.Role = model.RoleStaff
	}

	u, err := h.shop.AddUser(r.Context(), in)
	if err != nil {
		h.fail(w, "create user", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

// UpdateUser частично изменяет учётную запись.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch model.UserPatch
	if !h.decode(w, r, &patch) {
		return
	}

	u, err := h.shop.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, "update user", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// DeleteUser удаляет учётную запись. Удалить собственную запись нельзя.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	me, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == me.ID {
		h.writeError(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}

	if err := h.shop.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
