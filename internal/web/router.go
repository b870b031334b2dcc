package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/web/handler"
	"github.com/cantis/FlaskFactor2/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	AuthService   *auth.Service
	PlayerService *players.Service
	StaticDir     string // Path to static files directory
	SecureCookies bool   // Mark session cookies Secure (HTTPS only)
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the HTML routes on r
func Mount(r *mux.Router, cfg RouterConfig) {
	// Create middleware
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService, cfg.Logger)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService, cfg.Logger)

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.PlayerService, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger, cfg.SecureCookies)
	playersHandler := handler.NewPlayersHandler(cfg.PlayerService, cfg.Logger)
	sectionHandler := handler.NewSectionHandler(cfg.Logger)

	site := r.NewRoute().Subrouter()
	site.Use(middleware.Recovery(cfg.Logger))
	site.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	site.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.RenderError(w, r, http.StatusNotFound, "Page not found")
	})

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		site.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (optional auth for showing player info in nav)
	public := site.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Protected routes (require auth)
	protected := site.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)

	protected.HandleFunc("/players/", playersHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/players/add", playersHandler.AddForm).Methods(http.MethodGet)
	protected.HandleFunc("/players", playersHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/players/{id:[0-9]+}", playersHandler.EditForm).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id:[0-9]+}", playersHandler.Update).Methods(http.MethodPost)
	protected.HandleFunc("/players/{id:[0-9]+}/delete", playersHandler.Delete).Methods(http.MethodPost)

	protected.HandleFunc("/admin/", sectionHandler.Admin).Methods(http.MethodGet)
	protected.HandleFunc("/characters/", sectionHandler.Characters).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/", sectionHandler.Transactions).Methods(http.MethodGet)
}
