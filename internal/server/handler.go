// Package server assembles the HTTP surfaces of one application instance.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantis/FlaskFactor2/internal/api"
	"github.com/cantis/FlaskFactor2/internal/factory"
	"github.com/cantis/FlaskFactor2/internal/web"
)

// Options controls what NewHandler mounts
type Options struct {
	StaticDir     string
	SecureCookies bool
	// ServeMetrics mounts /metrics on the main handler
	ServeMetrics bool
}

// NewHandler mounts the JSON API under /api/v1 and the HTML pages on the rest
func NewHandler(app *factory.App, opts Options) http.Handler {
	r := mux.NewRouter()

	if opts.ServeMetrics {
		r.Handle("/metrics", app.Metrics.Handler()).Methods(http.MethodGet)
	}

	api.Mount(r, api.RouterConfig{
		Logger:        app.Logger,
		Metrics:       app.Metrics,
		AuthService:   app.AuthService,
		PlayerService: app.PlayerService,
		Gateway:       app.Gateway,
	})

	web.Mount(r, web.RouterConfig{
		Logger:        app.Logger,
		Metrics:       app.Metrics,
		AuthService:   app.AuthService,
		PlayerService: app.PlayerService,
		StaticDir:     opts.StaticDir,
		SecureCookies: opts.SecureCookies,
	})

	return r
}
