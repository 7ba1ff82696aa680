package store_router

import "github.com/go-chi/chi/v5"

func Routes(router chi.Router, h *Handler) {
	router.Get("/api/transactions", h.Feed)
	router.Post("/api/transactions", h.Record)
	router.Get("/api/balance", h.Balance)
}
