package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cantis/FlaskFactor2/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Scope outcomes recorded by the gateway
const (
	OutcomeCommit       = "commit"
	OutcomeRollback     = "rollback"
	OutcomeCommitFailed = "commit_failed"
	OutcomeBeginFailed  = "begin_failed"
)

// Gateway runs units of work against a Backend
type Gateway struct {
	backend Backend
	logger  *slog.Logger
	scopes  *prometheus.CounterVec
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithMetrics counts scope outcomes on a counter labelled by outcome
func WithMetrics(scopes *prometheus.CounterVec) GatewayOption {
	return func(g *Gateway) {
		g.scopes = scopes
	}
}

// NewGateway creates a gateway over backend
func NewGateway(backend Backend, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{backend: backend, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithSession runs body inside one transaction. It commits when body returns
// nil. When body returns an error or panics the transaction is rolled back
// and the error is returned (or the panic resumed) unchanged.
func (g *Gateway) WithSession(ctx context.Context, body func(ctx context.Context, s Session) error) error {
	tx, err := g.backend.Begin(ctx)
	if err != nil {
		g.observe(OutcomeBeginFailed)
		return NewStoreError("begin", "TX_BEGIN_FAILED", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		// panic or runtime.Goexit
		r := recover()
		cause := errors.New("scope exited without returning")
		if r != nil {
			cause = fmt.Errorf("panic: %v", r)
		}
		g.rollback(ctx, tx, cause)
		if r != nil {
			panic(r)
		}
	}()

	if err := body(ctx, tx); err != nil {
		finished = true
		g.rollback(ctx, tx, err)
		return err
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		g.observe(OutcomeCommitFailed)
		err = NewStoreError("commit", "TX_COMMIT_FAILED", err)
		logging.LogError(ctx, g.logger, "database error", err, "phase", "commit")
		return err
	}
	g.observe(OutcomeCommit)
	return nil
}

// Ping checks the backend is reachable
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.backend.Ping(ctx); err != nil {
		return NewStoreError("ping", "STORE_UNAVAILABLE", err)
	}
	return nil
}

// Close releases the backend
func (g *Gateway) Close() {
	g.backend.Close()
}

func (g *Gateway) rollback(ctx context.Context, tx Tx, cause error) {
	g.observe(OutcomeRollback)

	if IsStoreError(cause) {
		logging.LogError(ctx, g.logger, "database error", cause, "phase", "rollback")
	} else {
		g.logger.WarnContext(ctx, "general error", append([]any{"phase", "rollback"}, logging.ErrorAttrs(cause)...)...)
	}

	// A cancelled request must still release its transaction.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		logging.LogError(ctx, g.logger, "rollback failed", err)
	}
}

func (g *Gateway) observe(outcome string) {
	if g.scopes != nil {
		g.scopes.WithLabelValues(outcome).Inc()
	}
}
