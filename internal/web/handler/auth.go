package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cantis/FlaskFactor2/internal/services/auth"
	"github.com/cantis/FlaskFactor2/internal/web/middleware"
	"github.com/cantis/FlaskFactor2/internal/web/templates/pages"
)

// AuthHandler handles authentication pages and actions
type AuthHandler struct {
	authService   *auth.Service
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetPlayer(r.Context()) != nil {
		// Already logged in, redirect to home
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Next:     r.URL.Query().Get("next"),
	}
	render(w, r, h.logger, http.StatusOK, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "Invalid form data", "", "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if email == "" || password == "" {
		h.renderLoginError(w, r, "Email and password are required", email, next)
		return
	}

	session, player, err := h.authService.Login(r.Context(), email, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.renderLoginError(w, r, "Invalid email or password", email, next)
		return
	case errors.Is(err, auth.ErrAccountDisabled):
		h.renderLoginError(w, r, "Account is disabled", email, next)
		return
	case err != nil:
		internalError(w, r, h.logger, "login failed", err)
		return
	}

	h.setSessionCookie(w, session)
	middleware.SetFlash(w, middleware.FlashSuccess, "Welcome back, "+player.Name+"!")
	http.Redirect(w, r, safeNext(next, "/"), http.StatusSeeOther)
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.GetToken(r.Context()); token != "" {
		if err := h.authService.InvalidateSession(r.Context(), token); err != nil {
			h.logger.WarnContext(r.Context(), "failed to invalidate session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, middleware.FlashInfo, "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email, next string) {
	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Email:    email,
		Error:    errorMsg,
		Next:     next,
	}
	render(w, r, h.logger, http.StatusUnauthorized, pages.Login(data))
}
