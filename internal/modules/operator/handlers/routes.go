package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all operator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/operators", func(r chi.Router) {
		r.Post("/ground-energy", h.HandleGroundEnergy)
	})
}
