package handler

import (
	"net/http"

	"go.uber.org/zap"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.authMiddleware.SetAuthCookie(w, user.ID, user.Role)
	h.writeJSON(w, http.StatusOK, user)
}

// Logout завершает сессию пользователя из cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := h.authMiddleware.UserIDFromRequest(r)
	if err := h.gate.Logout(r.Context(), userID); err != nil {
		h.logger.Warn("logout error", zap.Error(err))
	}
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session возвращает текущего пользователя.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

type passwordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
	Confirm string `json:"confirm"`
}

// ChangePassword меняет пароль текущего пользователя.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req passwordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.shop.ChangePassword(r.Context(), user.ID, req.Current, req.Next, req.Confirm); err != nil {
		h.fail(w, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
