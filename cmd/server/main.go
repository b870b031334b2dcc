package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cantis/FlaskFactor2/internal/api"
	"github.com/cantis/FlaskFactor2/internal/config"
	"github.com/cantis/FlaskFactor2/internal/factory"
	"github.com/cantis/FlaskFactor2/internal/logging"
	"github.com/cantis/FlaskFactor2/internal/server"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
	redisstorage "github.com/cantis/FlaskFactor2/internal/storage/redis"
)

const serviceName = "flaskfactor"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const sessionSweepInterval = time.Minute

// flags override the environment when set
type flags struct {
	addr      string
	logLevel  string
	logFormat string
	staticDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "FlaskFactor player management server",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "Log format: json, text (env: LOG_FORMAT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringVar(&f.addr, "addr", "", "Listen address (env: HTTP_ADDR)")
		c.Flags().StringVar(&f.staticDir, "static-dir", "", "Serve files under /static/ from this directory")
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd(&f))
	return rootCmd
}

// load reads the environment and applies flag overrides
func load(f flags) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}

	logger := logging.Setup(serviceName, version, cfg.LogFormat, os.Stdout,
		logging.WithLevel(logging.ParseLevel(cfg.LogLevel)))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, f flags) error {
	cfg, logger, err := load(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer app.Close()

	handler := server.NewHandler(app, server.Options{
		StaticDir:     f.staticDir,
		SecureCookies: cfg.SecureCookies,
		ServeMetrics:  cfg.MetricsAddr == "",
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	servers := []*api.Server{api.NewServer(handler, serverCfg, logger)}

	if cfg.MetricsAddr != "" {
		metricsCfg := api.DefaultServerConfig()
		metricsCfg.Addr = cfg.MetricsAddr
		servers = append(servers, api.NewServer(app.Metrics.Handler(), metricsCfg, logger))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(srv.Start)
	}

	if app.MemorySessions != nil {
		g.Go(func() error {
			app.MemorySessions.Sweep(gctx, app.Clock, sessionSweepInterval, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(context.WithoutCancel(gctx)); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	logger.Info("server started",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("storage", cfg.StorageType),
		slog.String("sessions", cfg.SessionStore),
	)

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}

func factoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:       logger,
		StorageType:  cfg.StorageType,
		DatabaseURL:  cfg.DatabaseURL,
		AutoMigrate:  cfg.AutoMigrate,
		SessionStore: cfg.SessionStore,
		BcryptCost:   cfg.BcryptCost,
		AuthConfig: auth.Config{
			SessionDuration:     cfg.SessionTTL,
			MaxPasswordAttempts: cfg.MaxPasswordAttempts,
			LockoutDuration:     cfg.LockoutDuration,
		},
	}

	if cfg.SessionStore == config.SessionsRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// requireDatabase is used by commands that only make sense against postgres
func requireDatabase(cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}
