package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/api/apierr"
	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging logs API requests and counts them under the "api" surface
func Logging(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Logging(logger, "api", m)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
