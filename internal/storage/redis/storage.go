// Package redis stores login sessions in Redis so they survive restarts and
// are shared between server instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/cantis/FlaskFactor2/internal/dependencies/clock"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
)

// SessionStore is a Redis-backed auth.SessionStore. Each session is a JSON
// value whose TTL matches the session expiry.
type SessionStore struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
}

var _ auth.SessionStore = (*SessionStore)(nil)

// New connects to cfg.URL and verifies the connection
func New(ctx context.Context, cfg Config, clk clock.Clock) (*SessionStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrap(err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_UNAVAILABLE").With("addr", opts.Addr).Wrap(err)
	}

	return NewWithClient(client, cfg, clk), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *SessionStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &SessionStore{client: client, cfg: cfg, clock: clk}
}

// Close closes the Redis connection
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// Ping checks the server is reachable
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) Save(ctx context.Context, session *auth.Session) error {
	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	if err := s.client.Set(ctx, s.sessionKey(session.Token), data, ttl).Err(); err != nil {
		return oops.Code("SESSION_SAVE_FAILED").Wrap(err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*auth.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, auth.ErrInvalidSession
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOAD_FAILED").Wrap(err)
	}

	var session auth.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").Wrap(err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.sessionKey(token)).Err(); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	return nil
}
