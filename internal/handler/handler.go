// Package handler содержит HTTP-обработчики API магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shop-pos/internal/auth"
	"github.com/mmeshcher/shop-pos/internal/middleware"
	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
	"github.com/mmeshcher/shop-pos/internal/shop"
	"github.com/mmeshcher/shop-pos/internal/validation"
)

// Shop определяет операции движка магазина, используемые HTTP-обработчиками.
type Shop interface {
	Snapshot() shop.Snapshot
	Products() []model.ProductView
	Product(id string) (model.ProductView, error)
	SearchProducts(query string) []model.ProductView
	SaleSuggestions(query string) []model.ProductView
	LowStock() []model.ProductView
	Sales() []model.Sale
	Users() []model.CurrentUser
	User(id string) (model.CurrentUser, error)

	AddProduct(ctx context.Context, in model.ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	RecordSale(ctx context.Context, in shop.SaleInput) (model.Sale, error)
	AddUser(ctx context.Context, in model.UserInput) (model.CurrentUser, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (model.CurrentUser, error)
	DeleteUser(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, userID, current, next, confirm string) error
}

// Authenticator проверяет учётные данные и ведёт сессию.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.CurrentUser, error)
	Logout(ctx context.Context, userID string) error
}

// Metrics отдаёт метрики и принимает результаты запросов.
type Metrics interface {
	middleware.RequestObserver
	Handler() http.Handler
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	shop           Shop
	gate           Authenticator
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        Metrics
	now            func() time.Time
}

// Option настраивает Handler.
type Option func(*Handler)

// WithClock задаёт текущее время для отчётов.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithMetrics подключает сбор метрик и маршрут /metrics.
func WithMetrics(m Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Shop, gate Authenticator, logger *zap.Logger, auth *middleware.AuthMiddleware, opts ...Option) *Handler {
	h := &Handler{
		shop:           s,
		gate:           gate,
		logger:         logger,
		authMiddleware: auth,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// fail переводит ошибку движка в HTTP-ответ. Неизвестные ошибки логируются и отдаются как 500.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, validation.ErrInvalid):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, "Invalid username or password.")
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case errors.Is(err, repository.ErrUserExists):
		h.writeError(w, http.StatusConflict, "Username already taken.")
	default:
		h.logger.Error(op+" error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

// currentUser возвращает пользователя, найденного middleware Resolve.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (model.CurrentUser, bool) {
	if u, ok := middleware.GetUserFromContext(r.Context()); ok {
		return u, true
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return model.CurrentUser{}, false
	}

	u, err := h.shop.User(userID)
	if err != nil {
		h.authMiddleware.ClearAuthCookie(w)
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return model.CurrentUser{}, false
	}
	return u, true
}

func (h *Handler) lookupUser(id string) (model.CurrentUser, bool) {
	u, err := h.shop.User(id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.logger.Error("lookup user error", zap.String("user_id", id), zap.Error(err))
	}
	return u, err == nil
}
