package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"nsepulse/internal/services"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Check)
}

// Check returns the current health status
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.service.Check(r.Context())
	render.Status(r, http.StatusOK)
	render.JSON(w, r, status)
}
