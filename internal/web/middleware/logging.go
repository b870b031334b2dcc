package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/middleware"
)

// Logging creates logging middleware for the web interface
func Logging(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Logging(logger, "web", m)
}
