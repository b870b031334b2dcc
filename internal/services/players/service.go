// Package players is the player directory: every read and write of player
// records goes through it.
package players

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/storage"
)

// Gateway runs a unit of work
type Gateway interface {
	WithSession(ctx context.Context, body func(ctx context.Context, s storage.Session) error) error
}

// Service manages player records
type Service struct {
	gw      Gateway
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service
type Option func(*Service)

// WithMetrics counts created and deleted players
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a player directory
func New(gw Gateway, hasher PasswordHasher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{gw: gw, hasher: hasher, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword hashes plaintext with a fresh salt
func (s *Service) HashPassword(plaintext string) (string, error) {
	return s.hasher.Hash(plaintext)
}

// VerifyPassword reports whether plaintext matches the stored password of the
// player with email. An unknown email is a non-match, not an error.
func (s *Service) VerifyPassword(ctx context.Context, email, plaintext string) (bool, error) {
	var hash string
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		p, err := sess.PlayerByEmail(ctx, email)
		if err != nil || p == nil {
			return err
		}
		hash = p.Password
		return nil
	})
	if err != nil {
		return false, err
	}
	if hash == "" {
		return false, nil
	}

	switch err := s.hasher.Compare(hash, plaintext); {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrPasswordMismatch):
		return false, nil
	default:
		s.logger.WarnContext(ctx, "stored password hash unreadable", "email", email, "error", err)
		return false, nil
	}
}

// AddPlayer registers a new active player. An existing email is reported
// before the password is hashed.
func (s *Service) AddPlayer(ctx context.Context, name, email, plaintext string) (*model.Player, error) {
	player := &model.Player{
		Email:    email,
		Name:     name,
		IsActive: true,
	}
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		existing, err := sess.PlayerByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return &model.PlayerAlreadyExistsError{Email: email}
		}
		if player.Password, err = s.hasher.Hash(plaintext); err != nil {
			return err
		}
		return sess.InsertPlayer(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PlayersCreated.Inc()
	}
	s.logger.InfoContext(ctx, "player added", "player_id", player.ID, "email", email)
	return player, nil
}

// GetPlayerByID returns the player with id
func (s *Service) GetPlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player *model.Player
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		p, err := sess.PlayerByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return model.NotFoundByID(id)
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// GetPlayerByEmail returns the player with email
func (s *Service) GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	var player *model.Player
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		p, err := sess.PlayerByEmail(ctx, email)
		if err != nil {
			return err
		}
		if p == nil {
			return model.NotFoundByEmail(email)
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// GetAllPlayers returns every player in store order
func (s *Service) GetAllPlayers(ctx context.Context) ([]*model.Player, error) {
	var players []*model.Player
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		var err error
		players, err = sess.Players(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []*model.Player{}
	}
	return players, nil
}

// UpdatePlayer overwrites the supplied fields of the player with id.
// upd.Password is stored as given; callers hash it first.
func (s *Service) UpdatePlayer(ctx context.Context, id model.PlayerID, upd model.PlayerUpdate) (*model.Player, error) {
	var player *model.Player
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		p, err := sess.PlayerByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return model.NotFoundByID(id)
		}

		if upd.Email != nil && *upd.Email != p.Email {
			other, err := sess.PlayerByEmail(ctx, *upd.Email)
			if err != nil {
				return err
			}
			if other != nil {
				return &model.PlayerAlreadyExistsError{Email: *upd.Email}
			}
		}

		upd.ApplyTo(p)
		if err := sess.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "player updated", "player_id", id)
	return player, nil
}

// DeletePlayer removes the player with id
func (s *Service) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	err := s.gw.WithSession(ctx, func(ctx context.Context, sess storage.Session) error {
		p, err := sess.PlayerByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return model.NotFoundByID(id)
		}
		return sess.DeletePlayer(ctx, id)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.PlayersDeleted.Inc()
	}
	s.logger.InfoContext(ctx, "player deleted", "player_id", id)
	return nil
}
