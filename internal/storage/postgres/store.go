// Package postgres is the PostgreSQL storage backend.
package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/cantis/FlaskFactor2/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool is the subset of *pgxpool.Pool the backend needs
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Store implements storage.Backend over a connection pool
type Store struct {
	pool Pool
}

var _ storage.Backend = (*Store)(nil)

// New wraps an existing pool
func New(pool Pool) *Store {
	return &Store{pool: pool}
}

// ConnectOptions tunes the startup ping loop
type ConnectOptions struct {
	// Attempts is the number of retries after the first ping
	Attempts uint64
	// Backoff is the first delay; each retry doubles it
	Backoff time.Duration
}

// DefaultConnectOptions waits up to roughly six seconds for the database
var DefaultConnectOptions = ConnectOptions{Attempts: 5, Backoff: 200 * time.Millisecond}

// Connect opens a pool for dsn and pings it until it answers or the retry
// budget is spent.
func Connect(ctx context.Context, dsn string, logger *slog.Logger, opts ConnectOptions) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(opts.Attempts, retry.NewExponential(opts.Backoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").With("attempts", attempt).Wrap(err)
	}

	logger.InfoContext(ctx, "connected to database", "attempts", attempt)
	return New(pool), nil
}

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storage.NewStoreError("begin", "TX_BEGIN_FAILED", err)
	}
	return &playerTx{tx: tx}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}
