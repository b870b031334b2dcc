package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cantis/FlaskFactor2/internal/dependencies/clock"
	"github.com/cantis/FlaskFactor2/internal/model"
)

// Session is an authenticated login
type Session struct {
	Token     string         `json:"token"`
	PlayerID  model.PlayerID `json:"player_id"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the session has lapsed at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions by token
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	// Get returns ErrInvalidSession when the token is unknown
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// MemorySessionStore keeps sessions in process memory
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (m *MemorySessionStore) Save(ctx context.Context, session *Session) error {
	c := *session
	m.mu.Lock()
	m.sessions[session.Token] = &c
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidSession
	}
	c := *session
	return &c, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

// CleanExpired drops every session expired at now and returns how many went
func (m *MemorySessionStore) CleanExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes expired sessions every interval until ctx is done
func (m *MemorySessionStore) Sweep(ctx context.Context, clk clock.Clock, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanExpired(clk.Now()); n > 0 {
				logger.DebugContext(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
