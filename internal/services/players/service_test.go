package players

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cantis/FlaskFactor2/internal/metrics"
	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/storage"
	"github.com/cantis/FlaskFactor2/internal/storage/memory"
	"github.com/cantis/FlaskFactor2/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// faultyBackend fails inserts after they reach the working copy
type faultyBackend struct {
	*memory.Storage
	err error
}

type faultyTx struct {
	storage.Tx
	err error
}

func (b *faultyBackend) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := b.Storage.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, err: b.err}, nil
}

func (t *faultyTx) InsertPlayer(ctx context.Context, p *model.Player) error {
	if err := t.Tx.InsertPlayer(ctx, p); err != nil {
		return err
	}
	return t.err
}

// countingHasher records how often Hash runs
type countingHasher struct {
	PasswordHasher
	hashes int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(plaintext)
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.metrics = metrics.New()
	gw := storage.NewGateway(s.storage, testutil.NopLogger())
	s.service = New(gw, NewBcryptHasher(bcrypt.MinCost), testutil.NopLogger(), WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *ServiceSuite) addAlice() *model.Player {
	p, err := s.service.AddPlayer(s.ctx, "Alice", "alice@example.com", "password123")
	s.Require().NoError(err)
	return p
}

// Hashing

func (s *ServiceSuite) TestHashPasswordIsNotPlaintext() {
	hash, err := s.service.HashPassword("password123")
	s.Require().NoError(err)

	s.NotEqual("password123", hash)
	s.True(strings.HasPrefix(hash, "$2a$"), "unexpected hash %q", hash)
}

func (s *ServiceSuite) TestHashPasswordSaltsEachCall() {
	first, err := s.service.HashPassword("password123")
	s.Require().NoError(err)
	second, err := s.service.HashPassword("password123")
	s.Require().NoError(err)

	s.NotEqual(first, second)
}

func (s *ServiceSuite) TestBcryptHasherFallsBackToDefaultCost() {
	s.Equal(bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	s.Equal(bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	s.Equal(12, NewBcryptHasher(12).Cost)
}

// VerifyPassword

func (s *ServiceSuite) TestVerifyPasswordMatches() {
	s.addAlice()

	ok, err := s.service.VerifyPassword(s.ctx, "alice@example.com", "password123")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *ServiceSuite) TestVerifyPasswordWrongPassword() {
	s.addAlice()

	ok, err := s.service.VerifyPassword(s.ctx, "alice@example.com", "nope")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestVerifyPasswordUnknownEmail() {
	ok, err := s.service.VerifyPassword(s.ctx, "nobody@example.com", "password123")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestVerifyPasswordMalformedHash() {
	p := s.addAlice()
	bogus := "not-a-hash"
	_, err := s.service.UpdatePlayer(s.ctx, p.ID, model.PlayerUpdate{Password: &bogus})
	s.Require().NoError(err)

	ok, err := s.service.VerifyPassword(s.ctx, "alice@example.com", "not-a-hash")
	s.Require().NoError(err)
	s.False(ok)
}

// AddPlayer

func (s *ServiceSuite) TestAddPlayerPersistsDefaults() {
	p := s.addAlice()

	s.NotZero(p.ID)
	s.Equal("Alice", p.Name)
	s.Equal("alice@example.com", p.Email)
	s.NotEqual("password123", p.Password)
	s.Zero(p.PasswordAttempts)
	s.False(p.ResetPassword)
	s.True(p.IsActive)

	stored, err := s.service.GetPlayerByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p, stored)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.PlayersCreated))
}

func (s *ServiceSuite) TestAddPlayerDuplicateEmail() {
	s.addAlice()

	_, err := s.service.AddPlayer(s.ctx, "Impostor", "alice@example.com", "password456")

	var exists *model.PlayerAlreadyExistsError
	s.Require().ErrorAs(err, &exists)
	s.Equal("alice@example.com", exists.Email)
	s.Equal("player with email alice@example.com already exists", err.Error())

	all, err := s.service.GetAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
	s.Equal("Alice", all[0].Name)
}

func (s *ServiceSuite) TestAddPlayerDuplicateEmailSkipsHashing() {
	s.addAlice()
	hasher := &countingHasher{PasswordHasher: NewBcryptHasher(bcrypt.MinCost)}
	svc := New(storage.NewGateway(s.storage, testutil.NopLogger()), hasher, testutil.NopLogger())

	// too long to hash; the duplicate is reported first
	_, err := svc.AddPlayer(s.ctx, "Impostor", "alice@example.com", strings.Repeat("x", 80))

	s.ErrorIs(err, model.ErrPlayerAlreadyExists)
	s.Zero(hasher.hashes)
}

func (s *ServiceSuite) TestAddPlayerPasswordTooLong() {
	_, err := s.service.AddPlayer(s.ctx, "Alice", "alice@example.com", strings.Repeat("x", model.MaxPasswordBytes+1))

	s.ErrorIs(err, model.ErrPasswordTooLong)
	s.Equal(0, s.storage.Len())
}

func (s *ServiceSuite) TestHashPasswordTooLong() {
	_, err := s.service.HashPassword(strings.Repeat("x", model.MaxPasswordBytes+1))
	s.ErrorIs(err, model.ErrPasswordTooLong)

	_, err = s.service.HashPassword(strings.Repeat("x", model.MaxPasswordBytes))
	s.NoError(err)
}

func (s *ServiceSuite) TestAddPlayerStoreFailureLeavesNothing() {
	storeErr := storage.NewStoreError("insert player", "PLAYER_INSERT_FAILED", errors.New("disk full"))
	backend := &faultyBackend{Storage: s.storage, err: storeErr}
	svc := New(storage.NewGateway(backend, testutil.NopLogger()), NewBcryptHasher(bcrypt.MinCost), testutil.NopLogger())

	_, err := svc.AddPlayer(s.ctx, "Alice", "alice@example.com", "password123")

	s.Same(storeErr, err)
	s.Equal(0, s.storage.Len())
}

// Lookups

func (s *ServiceSuite) TestGetPlayerByIDNotFound() {
	_, err := s.service.GetPlayerByID(s.ctx, 999)

	var notFound *model.PlayerNotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal(model.PlayerID(999), notFound.ID)
	s.Equal("player with id 999 not found", err.Error())
}

func (s *ServiceSuite) TestGetPlayerByEmail() {
	p := s.addAlice()

	got, err := s.service.GetPlayerByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.service.GetPlayerByEmail(s.ctx, "ALICE@example.com")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestGetAllPlayers() {
	all, err := s.service.GetAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)

	s.addAlice()
	_, err = s.service.AddPlayer(s.ctx, "Bob", "bob@example.com", "password123")
	s.Require().NoError(err)

	all, err = s.service.GetAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

// UpdatePlayer

func (s *ServiceSuite) TestUpdatePlayerOnlyTouchesSuppliedFields() {
	p := s.addAlice()
	name := "Alicia"

	updated, err := s.service.UpdatePlayer(s.ctx, p.ID, model.PlayerUpdate{Name: &name})
	s.Require().NoError(err)

	s.Equal("Alicia", updated.Name)
	s.Equal(p.Email, updated.Email)
	s.Equal(p.Password, updated.Password)
	s.Equal(p.IsActive, updated.IsActive)

	stored, err := s.service.GetPlayerByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(updated, stored)
}

func (s *ServiceSuite) TestUpdatePlayerDoesNotHashPassword() {
	p := s.addAlice()
	raw := "$2a$04$precomputedhashvalue"

	updated, err := s.service.UpdatePlayer(s.ctx, p.ID, model.PlayerUpdate{Password: &raw})
	s.Require().NoError(err)
	s.Equal(raw, updated.Password)
}

func (s *ServiceSuite) TestUpdatePlayerNotFound() {
	s.addAlice()
	name := "Ghost"

	_, err := s.service.UpdatePlayer(s.ctx, 999, model.PlayerUpdate{Name: &name})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	all, err := s.service.GetAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal("Alice", all[0].Name)
}

func (s *ServiceSuite) TestUpdatePlayerEmailTaken() {
	s.addAlice()
	bob, err := s.service.AddPlayer(s.ctx, "Bob", "bob@example.com", "password123")
	s.Require().NoError(err)
	taken := "alice@example.com"

	_, err = s.service.UpdatePlayer(s.ctx, bob.ID, model.PlayerUpdate{Email: &taken})
	s.ErrorIs(err, model.ErrPlayerAlreadyExists)

	stored, err := s.service.GetPlayerByID(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Equal("bob@example.com", stored.Email)
}

func (s *ServiceSuite) TestUpdatePlayerSameEmailAllowed() {
	p := s.addAlice()
	same := "alice@example.com"
	active := false

	updated, err := s.service.UpdatePlayer(s.ctx, p.ID, model.PlayerUpdate{Email: &same, IsActive: &active})
	s.Require().NoError(err)
	s.False(updated.IsActive)
}

// DeletePlayer

func (s *ServiceSuite) TestDeletePlayer() {
	p := s.addAlice()

	s.Require().NoError(s.service.DeletePlayer(s.ctx, p.ID))

	_, err := s.service.GetPlayerByID(s.ctx, p.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.PlayersDeleted))
}

func (s *ServiceSuite) TestDeletePlayerNotFound() {
	s.addAlice()

	err := s.service.DeletePlayer(s.ctx, 999)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Equal(1, s.storage.Len())
}
