package handler

import (
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/api/apierr"
	"github.com/cantis/FlaskFactor2/internal/api/middleware"
	"github.com/cantis/FlaskFactor2/internal/api/request"
	"github.com/cantis/FlaskFactor2/internal/api/response"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
)

// SessionHandler handles login and logout
type SessionHandler struct {
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *auth.Service) *SessionHandler {
	return &SessionHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Email == "" {
		WriteError(w, apierr.NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	session, player, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session, player))
}

// Logout handles DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	if err := h.authService.InvalidateSession(r.Context(), token); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
