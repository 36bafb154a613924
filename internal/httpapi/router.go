// Package httpapi is the HTTP surface of the service: routing, auth and
// rate-limit middleware, and the handlers that translate between JSON and
// the domain services.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/Daddtdrey/eatai/internal/config"
)

type RouterDeps struct {
	Roles    *config.Roles
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Products *ProductsHandler
	Cart     *CartHandler

	RequestTimeout time.Duration
}

// NewRouter wires the full API surface.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware(deps.Roles))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Get("/{id}", deps.Products.Get)
			r.Post("/", deps.Products.Create)
			r.Put("/{id}", deps.Products.Update)
			r.Delete("/{id}", deps.Products.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.Get)
			r.Post("/lines", deps.Cart.AddLine)
			r.Delete("/lines/{lineID}", deps.Cart.RemoveLine)
			r.Delete("/", deps.Cart.Clear)
		})

		r.Route("/checkout", func(r chi.Router) {
			// One order per second per user is generous for a human and
			// stops a retry loop from stampeding the transaction.
			r.Use(RateLimitMiddleware(rate.Limit(1), 3))
			r.Post("/", deps.Checkout.PlaceOrder)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", deps.Orders.List)
			r.Get("/{id}", deps.Orders.Get)
			r.Post("/{id}/status", deps.Orders.UpdateStatus)
		})
	})

	return r
}
