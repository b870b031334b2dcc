package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/cantis/FlaskFactor2/internal/web/middleware"
	"github.com/cantis/FlaskFactor2/internal/web/templates/layout"
)

func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.ErrorContext(r.Context(), "render page", "path", r.URL.Path, "error", err)
	}
}

func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:  title,
		Player: middleware.GetPlayer(r.Context()),
		Flash:  middleware.GetFlash(r.Context()),
	}
}

// internalError logs err and renders the generic error page
func internalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	middleware.RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// safeNext returns next when it is a local path, otherwise fallback
func safeNext(next, fallback string) string {
	if len(next) > 1 && next[0] == '/' && next[1] != '/' && next[1] != '\\' {
		return next
	}
	if next == "/" {
		return next
	}
	return fallback
}
