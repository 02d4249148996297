package httpapi

import (
	"time"

	"antaran-be/internal/actor"
	"antaran-be/internal/logger"
	"antaran-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP edge. Every order route requires an
// authenticated actor; authorization beyond that is the service's job.
func NewRouter(h *Handler, secret []byte) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(middleware.Auth(secret))
	r.Use(middleware.RateLimit)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/", h.ListOrders)
			r.With(middleware.RequireRole(actor.RoleAgent)).Get("/claimable", h.ListClaimable)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/transition", h.Transition)
			r.Post("/{id}/verify-pickup", h.VerifyPickup)
			r.Post("/{id}/verify-delivery", h.VerifyDelivery)
		})

		r.Route("/stores/{storeID}/inventory/{productID}", func(r chi.Router) {
			r.Get("/", h.GetInventory)
			r.With(middleware.RequireRole(actor.RoleVendor)).Put("/", h.PutInventory)
		})
	})

	return r
}
