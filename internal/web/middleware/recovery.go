package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/middleware"
	"github.com/cantis/FlaskFactor2/internal/web/templates/layout"
	"github.com/cantis/FlaskFactor2/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// RenderError writes the HTML error page with status
func RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := pages.ErrorData{
		PageData: layout.PageData{
			Title:  http.StatusText(status),
			Player: GetPlayer(r.Context()),
		},
		Status:  status,
		Message: message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pages.Error(data).Render(r.Context(), w)
}
