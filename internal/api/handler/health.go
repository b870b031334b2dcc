package handler

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/api/apierr"
	"github.com/cantis/FlaskFactor2/internal/api/response"
	"github.com/cantis/FlaskFactor2/internal/storage"
)

// HealthHandler reports whether the server can reach its player store
type HealthHandler struct {
	gateway *storage.Gateway
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gateway *storage.Gateway, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{gateway: gateway, logger: logger}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		WriteError(w, apierr.NewUnavailableError())
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Database: "ok"})
}
