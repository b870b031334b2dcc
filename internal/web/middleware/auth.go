package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
)

type contextKey string

const (
	playerContextKey contextKey = "player"
	tokenContextKey  contextKey = "token"
)

// SessionCookie holds the session token of a logged in browser
const SessionCookie = "session"

// GetPlayer retrieves the authenticated player from the request context
// Returns nil if no player is authenticated
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// GetToken returns the session token behind the authenticated player
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// Auth returns middleware that requires authentication
// Redirects to the login page if not authenticated
func Auth(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player, token, err := playerFromSession(r, authService)
			if err != nil {
				logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
				RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
				return
			}
			if player == nil {
				// Store original URL to redirect back after login
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPlayer(r.Context(), player, token)))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it
// Sets player in context if authenticated, nil otherwise
func OptionalAuth(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player, token, err := playerFromSession(r, authService)
			if err != nil {
				logger.WarnContext(r.Context(), "session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r.WithContext(withPlayer(r.Context(), player, token)))
		})
	}
}

func withPlayer(ctx context.Context, player *model.Player, token string) context.Context {
	ctx = context.WithValue(ctx, playerContextKey, player)
	return context.WithValue(ctx, tokenContextKey, token)
}

// playerFromSession returns a nil player for a missing, expired or disabled
// session. Only failures to reach the stores are returned as errors.
func playerFromSession(r *http.Request, authService *auth.Service) (*model.Player, string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, "", nil
	}

	player, err := authService.Principal(r.Context(), cookie.Value)
	switch {
	case errors.Is(err, auth.ErrInvalidSession), errors.Is(err, auth.ErrAccountDisabled):
		return nil, "", nil
	case err != nil:
		return nil, "", err
	}

	return player, cookie.Value, nil
}
