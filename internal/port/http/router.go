package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/cart", h.HandleGetCart)
		r.Post("/cart/items", h.HandleAddItem)
		r.Patch("/cart/items/{id}", h.HandleUpdateQuantity)
		r.Delete("/cart/items/{id}", h.HandleRemoveItem)
		r.Delete("/cart", h.HandleClearCart)

		r.Get("/products/{id}/availability", h.HandleAvailability)

		r.Post("/checkout", h.HandleCheckout)
		r.Get("/orders", h.HandleListOrders)
		r.Get("/orders/{id}", h.HandleGetOrder)
		r.Post("/orders/{id}/cancel", h.HandleCancelOrder)
	})

	return mux
}
