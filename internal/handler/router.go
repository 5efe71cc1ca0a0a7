package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/shop-pos/internal/middleware"
	"github.com/mmeshcher/shop-pos/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	var observer custommiddleware.RequestObserver
	if h.metrics != nil {
		observer = h.metrics
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.LoggerMiddleware(h.logger, observer))

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(h.authMiddleware.Resolve(h.lookupUser))

			r.Get("/auth/session", h.Session)
			r.Put("/account/password", h.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireRole(model.RoleStaff, model.RoleAdmin))

				r.Get("/products", h.ListProducts)
				r.Get("/products/suggest", h.SuggestProducts)
				r.Post("/sales", h.RecordSale)
				r.Get("/sales/mine", h.MySales)
			})

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireRole(model.RoleAdmin))

				r.Post("/products", h.CreateProduct)
				r.Get("/products/low-stock", h.LowStock)
				r.Get("/products/{id}", h.GetProduct)
				r.Put("/products/{id}", h.UpdateProduct)
				r.Delete("/products/{id}", h.DeleteProduct)

				r.Get("/sales", h.ListSales)
				r.Get("/sales/export.csv", h.ExportSales)

				r.Get("/reports/dashboard", h.Dashboard)

				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Put("/users/{id}", h.UpdateUser)
				r.Delete("/users/{id}", h.DeleteUser)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
