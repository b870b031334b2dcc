package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantis/FlaskFactor2/internal/api/handler"
	"github.com/cantis/FlaskFactor2/internal/api/middleware"
	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	AuthService   *auth.Service
	PlayerService *players.Service
	Gateway       *storage.Gateway
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the API routes under /api/v1 on r
func Mount(r *mux.Router, cfg RouterConfig) {
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)
	sessionHandler := handler.NewSessionHandler(cfg.AuthService)
	healthHandler := handler.NewHealthHandler(cfg.Gateway, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger, cfg.Metrics))

	// Public routes
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/session", sessionHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/session", sessionHandler.Logout).Methods(http.MethodDelete)
	protected.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id:[0-9]+}", playerHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id:[0-9]+}", playerHandler.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/players/{id:[0-9]+}", playerHandler.Delete).Methods(http.MethodDelete)
}
