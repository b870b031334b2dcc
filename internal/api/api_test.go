package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantis/FlaskFactor2/internal/api"
	"github.com/cantis/FlaskFactor2/internal/api/apierr"
	"github.com/cantis/FlaskFactor2/internal/api/response"
	"github.com/cantis/FlaskFactor2/internal/factory"
)

// testServer wires the API router over an in-memory app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(app.Close)

	router := api.NewRouter(api.RouterConfig{
		Logger:        app.Logger,
		Metrics:       app.Metrics,
		AuthService:   app.AuthService,
		PlayerService: app.PlayerService,
		Gateway:       app.Gateway,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[apierr.ErrorResponse](t, rr).Error.Code
}

func playerPath(id int64) string {
	return "/api/v1/players/" + strconv.FormatInt(id, 10)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decodeBody[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Store.Close()

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeUnavailable, errorCode(t, rr))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"name":     "Frodo",
		"email":    "frodo@shire.me",
		"password": "ringbearer",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decodeBody[response.Player](t, rr)
	assert.Equal(t, "Frodo", created.Name)
	assert.True(t, created.IsActive)
	assert.Equal(t, playerPath(created.ID), rr.Header().Get("Location"))
	assert.NotContains(t, rr.Body.String(), `"password"`)
	assert.NotContains(t, rr.Body.String(), "$2a$")

	rr = ts.request(http.MethodPost, "/api/v1/session", map[string]string{
		"email":    "frodo@shire.me",
		"password": "ringbearer",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	auth := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, created.ID, auth.Player.ID)
	assert.NotEmpty(t, auth.SessionToken)
	assert.True(t, ts.app.MockClock.Now().Add(24*time.Hour).Equal(auth.ExpiresAt))
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]string{"email": "a@x.com", "password": "12345678"}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "12345678"}},
		{"short password", map[string]string{"name": "A", "email": "a@x.com", "password": "short"}},
		{"unknown field", map[string]string{"name": "A", "email": "a@x.com", "password": "12345678", "role": "admin"}},
		{"not json", "just a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/players", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
		})
	}
	assert.Equal(t, 0, ts.app.Store.Len())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"name":     "Other Sam",
		"email":    "sam@shire.me",
		"password": "potatoes2",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePlayerExists, errorCode(t, rr))
}

func TestLogin_Failures(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")

	rr := ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me", "password": "wrong-one"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "nobody@shire.me", "password": "potatoes1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func lockOut(t *testing.T, ts *testServer, email string) {
	t.Helper()
	for range 5 {
		rr := ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": email, "password": "wrong-one"}, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
}

func TestLogin_LockedAccountMatchesUnknownAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")
	lockOut(t, ts, "sam@shire.me")

	locked := ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me", "password": "potatoes1"}, "")
	unknown := ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "rosie@shire.me", "password": "potatoes1"}, "")

	assert.Equal(t, http.StatusUnauthorized, locked.Code)
	assert.Equal(t, unknown.Code, locked.Code)
	assert.Equal(t, unknown.Body.String(), locked.Body.String())
}

func TestLogin_LockExpires(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")
	lockOut(t, ts, "sam@shire.me")

	ts.app.MockClock.Advance(15 * time.Minute)

	rr := ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me", "password": "potatoes1"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Zero(t, decodeBody[response.AuthResponse](t, rr).Player.PasswordAttempts)
}

func TestLogin_LockClearedByAnotherPlayer(t *testing.T) {
	ts := newTestServer(t)
	sam := ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")
	ts.app.SeedPlayer("Frodo", "frodo@shire.me", "ringbearer")
	token := ts.app.Login("frodo@shire.me", "ringbearer")
	lockOut(t, ts, "sam@shire.me")

	rr := ts.request(http.MethodPatch, playerPath(int64(sam.ID)), map[string]any{"password_attempts": 0}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Zero(t, decodeBody[response.Player](t, rr).PasswordAttempts)

	rr = ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me", "password": "potatoes1"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPatch, playerPath(int64(sam.ID)), map[string]any{"password_attempts": -1}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	p := ts.app.SeedPlayer("Merry", "merry@shire.me", "brandybuck")
	token := ts.app.Login("merry@shire.me", "brandybuck")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	me := decodeBody[response.Player](t, rr)
	assert.Equal(t, int64(p.ID), me.ID)
	assert.Equal(t, "merry@shire.me", me.Email)
}

func TestSessionCookieAccepted(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Merry", "merry@shire.me", "brandybuck")
	token := ts.app.Login("merry@shire.me", "brandybuck")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/players"},
		{http.MethodGet, "/api/v1/players/me"},
		{http.MethodGet, "/api/v1/players/1"},
		{http.MethodPatch, "/api/v1/players/1"},
		{http.MethodDelete, "/api/v1/players/1"},
		{http.MethodDelete, "/api/v1/session"},
	} {
		rr := ts.request(tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))
	}

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionExpires(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Pippin", "pippin@shire.me", "secondbreakfast")
	token := ts.app.Login("pippin@shire.me", "secondbreakfast")

	ts.app.MockClock.Advance(25 * time.Hour)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Pippin", "pippin@shire.me", "secondbreakfast")
	token := ts.app.Login("pippin@shire.me", "secondbreakfast")

	rr := ts.request(http.MethodDelete, "/api/v1/session", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListAndGetPlayers(t *testing.T) {
	ts := newTestServer(t)
	a := ts.app.SeedPlayer("Aragorn", "strider@gondor.me", "anduril01")
	b := ts.app.SeedPlayer("Boromir", "boromir@gondor.me", "hornblower")
	token := ts.app.Login("strider@gondor.me", "anduril01")

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[response.PlayerList](t, rr)
	require.Len(t, list.Players, 2)
	assert.Equal(t, int64(a.ID), list.Players[0].ID)
	assert.Equal(t, int64(b.ID), list.Players[1].ID)

	rr = ts.request(http.MethodGet, playerPath(int64(b.ID)), nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Boromir", decodeBody[response.Player](t, rr).Name)

	rr = ts.request(http.MethodGet, playerPath(999), nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/players/abc", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePlayer(t *testing.T) {
	ts := newTestServer(t)
	p := ts.app.SeedPlayer("Gandalf", "grey@istari.me", "youshallnotpass")
	token := ts.app.Login("grey@istari.me", "youshallnotpass")

	rr := ts.request(http.MethodPatch, playerPath(int64(p.ID)), map[string]any{
		"name":             "Gandalf the White",
		"email":            "white@istari.me",
		"password":         "flyyoufools",
		"current_password": "youshallnotpass",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	updated := decodeBody[response.Player](t, rr)
	assert.Equal(t, "Gandalf the White", updated.Name)
	assert.Equal(t, "white@istari.me", updated.Email)

	ok, err := ts.app.PlayerService.VerifyPassword(t.Context(), "white@istari.me", "flyyoufools")
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := ts.app.PlayerService.GetPlayerByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "flyyoufools", stored.Password)
}

func TestUpdatePlayer_Errors(t *testing.T) {
	ts := newTestServer(t)
	p := ts.app.SeedPlayer("Gandalf", "grey@istari.me", "youshallnotpass")
	ts.app.SeedPlayer("Saruman", "white@istari.me", "palantir99")
	token := ts.app.Login("grey@istari.me", "youshallnotpass")

	rr := ts.request(http.MethodPatch, playerPath(int64(p.ID)), map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPatch, playerPath(int64(p.ID)), map[string]any{"password": "short"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPatch, playerPath(int64(p.ID)), map[string]any{
		"password":         strings.Repeat("x", 80),
		"current_password": "youshallnotpass",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))

	rr = ts.request(http.MethodPatch, playerPath(int64(p.ID)), map[string]any{"email": "white@istari.me"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodPatch, playerPath(999), map[string]any{"name": "Nobody"}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePlayer_PasswordNeedsCurrentPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Gandalf", "grey@istari.me", "youshallnotpass")
	saruman := ts.app.SeedPlayer("Saruman", "white@istari.me", "palantir99")
	token := ts.app.Login("grey@istari.me", "youshallnotpass")

	rr := ts.request(http.MethodPatch, playerPath(int64(saruman.ID)), map[string]any{"password": "mine-now-1"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "current password is required")

	rr = ts.request(http.MethodPatch, playerPath(int64(saruman.ID)), map[string]any{
		"password":         "mine-now-1",
		"current_password": "guessing",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "current password is incorrect")

	ok, err := ts.app.PlayerService.VerifyPassword(t.Context(), "white@istari.me", "palantir99")
	require.NoError(t, err)
	assert.True(t, ok)

	rr = ts.request(http.MethodPatch, playerPath(999), map[string]any{
		"password":         "mine-now-1",
		"current_password": "palantir99",
	}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePlayer_PasswordChangeClearsAttempts(t *testing.T) {
	ts := newTestServer(t)
	sam := ts.app.SeedPlayer("Sam", "sam@shire.me", "potatoes1")
	ts.app.SeedPlayer("Frodo", "frodo@shire.me", "ringbearer")
	token := ts.app.Login("frodo@shire.me", "ringbearer")
	lockOut(t, ts, "sam@shire.me")

	rr := ts.request(http.MethodPatch, playerPath(int64(sam.ID)), map[string]any{
		"password":         "mashedpotatoes",
		"current_password": "potatoes1",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Zero(t, decodeBody[response.Player](t, rr).PasswordAttempts)

	rr = ts.request(http.MethodPost, "/api/v1/session", map[string]string{"email": "sam@shire.me", "password": "mashedpotatoes"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"name":     "Treebeard",
		"email":    "fangorn@ents.me",
		"password": strings.Repeat("x", 80),
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
	assert.Contains(t, rr.Body.String(), "at most 72 bytes")
	assert.Zero(t, ts.app.Store.Len())
}

func TestDeletePlayer(t *testing.T) {
	ts := newTestServer(t)
	ts.app.SeedPlayer("Elrond", "elrond@rivendell.me", "imladris1")
	victim := ts.app.SeedPlayer("Gollum", "smeagol@misty.me", "precious1")
	token := ts.app.Login("elrond@rivendell.me", "imladris1")

	rr := ts.request(http.MethodDelete, playerPath(int64(victim.ID)), nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, playerPath(int64(victim.ID)), nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 1, ts.app.Store.Len())
}

func TestDeletedPlayerSessionInvalid(t *testing.T) {
	ts := newTestServer(t)
	p := ts.app.SeedPlayer("Elrond", "elrond@rivendell.me", "imladris1")
	token := ts.app.Login("elrond@rivendell.me", "imladris1")

	rr := ts.request(http.MethodDelete, playerPath(int64(p.ID)), nil, token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
