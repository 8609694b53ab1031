package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the run trigger on the root path
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleRun)
	r.Post("/", h.HandleRun)
}
