package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cantis/FlaskFactor2/internal/dependencies/clock"
	"github.com/cantis/FlaskFactor2/internal/dependencies/random"
	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAccountDisabled    = errors.New("account disabled")
)

// Directory is the part of the player directory login needs
type Directory interface {
	GetPlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error)
	VerifyPassword(ctx context.Context, email, plaintext string) (bool, error)
	UpdatePlayer(ctx context.Context, id model.PlayerID, upd model.PlayerUpdate) (*model.Player, error)
}

// Service handles login and session management
type Service struct {
	players Directory
	store   SessionStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	metrics *metrics.Metrics
	locks   *lockouts
	cfg     Config
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	TokenLength     int
	// MaxPasswordAttempts locks an account once reached; 0 disables locking
	MaxPasswordAttempts int
	// LockoutDuration is how long a locked account is refused
	LockoutDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration:     24 * time.Hour,
		TokenLength:         48,
		MaxPasswordAttempts: 5,
		LockoutDuration:     15 * time.Minute,
	}
}

// Option configures a Service
type Option func(*Service)

// WithMetrics counts login results
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates an auth service. Zero config fields take their defaults.
func New(players Directory, store SessionStore, clk clock.Clock, rnd random.Random, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = def.SessionDuration
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = def.TokenLength
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	s := &Service{
		players: players,
		store:   store,
		clock:   clk,
		random:  rnd,
		logger:  logger,
		locks:   newLockouts(),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and opens a session. A wrong password counts
// against the player's failed attempts; reaching MaxPasswordAttempts locks the
// account for LockoutDuration. A successful login clears the count.
//
// Unknown emails, wrong passwords and locked accounts all report
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, *model.Player, error) {
	player, err := s.players.GetPlayerByEmail(ctx, email)
	if errors.Is(err, model.ErrPlayerNotFound) {
		s.metrics.ObserveLogin("invalid")
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	if s.locked(player, now) {
		s.metrics.ObserveLogin("locked")
		s.logger.InfoContext(ctx, "login refused for locked account", "player_id", player.ID)
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := s.players.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		s.recordFailure(ctx, player, now)
		s.metrics.ObserveLogin("invalid")
		return nil, nil, ErrInvalidCredentials
	}

	if !player.IsActive {
		s.metrics.ObserveLogin("disabled")
		return nil, nil, ErrAccountDisabled
	}

	if player.PasswordAttempts != 0 {
		zero := 0
		player, err = s.players.UpdatePlayer(ctx, player.ID, model.PlayerUpdate{PasswordAttempts: &zero})
		if err != nil {
			return nil, nil, err
		}
	}
	s.locks.clear(player.ID)

	session, err := s.createSession(ctx, player.ID)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.ObserveLogin("success")
	s.logger.InfoContext(ctx, "player logged in", "player_id", player.ID)
	return session, player, nil
}

// locked reports whether player is inside a lockout window. Clearing the
// player's failed attempts lifts the lock early.
func (s *Service) locked(player *model.Player, now time.Time) bool {
	limit := s.cfg.MaxPasswordAttempts
	return limit > 0 && player.PasswordAttempts >= limit && s.locks.active(player.ID, now)
}

func (s *Service) recordFailure(ctx context.Context, player *model.Player, now time.Time) {
	attempts := player.PasswordAttempts + 1
	if _, err := s.players.UpdatePlayer(ctx, player.ID, model.PlayerUpdate{PasswordAttempts: &attempts}); err != nil {
		s.logger.WarnContext(ctx, "failed to record password attempt", "player_id", player.ID, "error", err)
		return
	}
	if limit := s.cfg.MaxPasswordAttempts; limit > 0 && attempts >= limit {
		until := now.Add(s.cfg.LockoutDuration)
		s.locks.lock(player.ID, until)
		s.logger.WarnContext(ctx, "account locked", "player_id", player.ID, "attempts", attempts, "until", until)
	}
}

// ValidateSession returns the live session for token
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.clock.Now()) {
		if err := s.store.Delete(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "failed to drop expired session", "error", err)
		}
		return nil, ErrInvalidSession
	}
	return session, nil
}

// InvalidateSession ends the session for token
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// Principal loads the player behind token. A session whose player has been
// deleted is treated as invalid and removed.
func (s *Service) Principal(ctx context.Context, token string) (*model.Player, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	player, err := s.players.GetPlayerByID(ctx, session.PlayerID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		if err := s.store.Delete(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "failed to drop session of deleted player", "error", err)
		}
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	principal := PlayerPrincipal{Player: player}
	if !principal.Active() {
		return nil, ErrAccountDisabled
	}
	s.logger.DebugContext(ctx, "session resolved", "principal", principal.ID())
	return player, nil
}

func (s *Service) createSession(ctx context.Context, playerID model.PlayerID) (*Session, error) {
	now := s.clock.Now()
	session := &Session{
		Token:     random.Token(s.random, s.cfg.TokenLength),
		PlayerID:  playerID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionDuration),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
