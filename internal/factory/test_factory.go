package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cantis/FlaskFactor2/internal/dependencies/mocks"
	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/storage/memory"
	"github.com/cantis/FlaskFactor2/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	Store *memory.Storage

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App over an in-memory store with mocked clock and
// randomness and the cheapest bcrypt cost
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, auth.NewMemorySessionStore(), mockClock, mockRandom,
		players.NewBcryptHasher(bcrypt.MinCost), auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		Store:      store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedPlayer adds a player with the given credentials
func (t *TestApp) SeedPlayer(name, email, password string) *model.Player {
	p, err := t.PlayerService.AddPlayer(context.Background(), name, email, password)
	if err != nil {
		panic("seed player: " + err.Error())
	}
	return p
}

// Login opens a session for an existing player and returns its token
func (t *TestApp) Login(email, password string) string {
	session, _, err := t.AuthService.Login(context.Background(), email, password)
	if err != nil {
		panic("login: " + err.Error())
	}
	return session.Token
}
