package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/cantis/FlaskFactor2/internal/dependencies/clock"
	"github.com/cantis/FlaskFactor2/internal/dependencies/random"
	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/storage"
	"github.com/cantis/FlaskFactor2/internal/storage/memory"
	"github.com/cantis/FlaskFactor2/internal/storage/postgres"
	redisstorage "github.com/cantis/FlaskFactor2/internal/storage/redis"
)

// Backend selectors
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Storage
	Gateway  *storage.Gateway
	Sessions auth.SessionStore
	// MemorySessions is set when sessions live in process and need sweeping
	MemorySessions *auth.MemorySessionStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	PlayerService *players.Service
	AuthService   *auth.Service

	closers []func()
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the player store ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// DatabaseURL is required when StorageType is "postgres"
	DatabaseURL string
	// AutoMigrate applies pending schema migrations before connecting
	AutoMigrate bool
	// SessionStore selects where login sessions live ("memory" or "redis")
	SessionStore string
	// RedisConfig is required when SessionStore is "redis"
	RedisConfig *redisstorage.Config
	// BcryptCost is the password hashing cost; 0 means bcrypt's default
	BcryptCost int
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []func()
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, backend.Close)

	clk := clock.New()

	var sessions auth.SessionStore
	switch cfg.SessionStore {
	case "", SessionStoreMemory:
		sessions = auth.NewMemorySessionStore()
	case SessionStoreRedis:
		if cfg.RedisConfig == nil {
			return fail(errors.New("RedisConfig required when SessionStore is redis"))
		}
		redisStore, err := redisstorage.New(ctx, *cfg.RedisConfig, clk)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = redisStore.Close() })
		sessions = redisStore
	default:
		return fail(errors.New("invalid SessionStore: must be 'memory' or 'redis'"))
	}

	app := newWithDependencies(backend, sessions, clk, random.New(), players.NewBcryptHasher(cfg.BcryptCost), cfg.AuthConfig, logger)
	app.closers = closers
	return app, nil
}

func newBackend(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.StorageType {
	case "", StorageTypeMemory:
		return memory.New(), nil
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		if cfg.AutoMigrate {
			if err := Migrate(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		return postgres.Connect(ctx, cfg.DatabaseURL, logger, postgres.DefaultConnectOptions)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'postgres'")
	}
}

// Migrate applies pending schema migrations to the database at url
func Migrate(url string, logger *slog.Logger) error {
	migrator, err := postgres.NewMigrator(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("closing migrator", "error", err)
		}
	}()

	if err := migrator.Up(); err != nil {
		return err
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("database schema up to date", "version", version, "dirty", dirty)
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(backend storage.Backend, sessions auth.SessionStore, clk clock.Clock, rnd random.Random, hasher players.PasswordHasher, authCfg auth.Config, logger *slog.Logger) *App {
	m := metrics.New()
	gw := storage.NewGateway(backend, logger, storage.WithMetrics(m.SessionScopes))

	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	playerService := players.New(gw, hasher, logger, players.WithMetrics(m))
	authService := auth.New(playerService, sessions, clk, rnd, logger, authCfg, auth.WithMetrics(m))

	app := &App{
		Logger:        logger,
		Metrics:       m,
		Gateway:       gw,
		Sessions:      sessions,
		Clock:         clk,
		Random:        rnd,
		PlayerService: playerService,
		AuthService:   authService,
	}
	if mem, ok := sessions.(*auth.MemorySessionStore); ok {
		app.MemorySessions = mem
	}
	return app
}

// Close releases the stores in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
