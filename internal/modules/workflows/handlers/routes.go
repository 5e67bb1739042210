package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all workflow routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workflows", func(r chi.Router) {
		r.Post("/ground-state", h.HandleRunGroundState)
		r.Post("/period-finding", h.HandleRunPeriodFinding)
	})
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.HandleListRuns)
		r.Get("/{id}", h.HandleGetRun)
	})
}
