package handler

import (
	"context"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/api/apierr"
	"github.com/cantis/FlaskFactor2/internal/api/middleware"
	"github.com/cantis/FlaskFactor2/internal/api/request"
	"github.com/cantis/FlaskFactor2/internal/api/response"
	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/players"
)

// PlayerHandler handles player directory endpoints
type PlayerHandler struct {
	players *players.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *players.Service) *PlayerHandler {
	return &PlayerHandler{
		players: playerService,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := validateNew(req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.players.AddPlayer(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/players/"+itoa(player.ID))
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.players.GetAllPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerListFromModel(all))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := playerIDVar(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.players.GetPlayerByID(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Update handles PATCH /api/v1/players/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := playerIDVar(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdatePlayerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	upd, err := h.toUpdate(r.Context(), id, req)
	if err != nil {
		WriteError(w, err)
		return
	}
	if upd.IsEmpty() {
		WriteError(w, apierr.NewInvalidRequestError("no fields to update"))
		return
	}

	player, err := h.players.UpdatePlayer(r.Context(), id, upd)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Delete handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := playerIDVar(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.players.DeletePlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// toUpdate validates the supplied fields and hashes a new password. A
// password change also clears the failed login count unless the request
// sets it.
func (h *PlayerHandler) toUpdate(ctx context.Context, id model.PlayerID, req request.UpdatePlayerRequest) (model.PlayerUpdate, error) {
	upd := model.PlayerUpdate{
		Name:             req.Name,
		Email:            req.Email,
		PasswordAttempts: req.PasswordAttempts,
		ResetPassword:    req.ResetPassword,
		IsActive:         req.IsActive,
	}
	if req.PasswordAttempts != nil && *req.PasswordAttempts < 0 {
		return upd, model.ErrPasswordAttemptsInvalid
	}
	if req.Name != nil {
		if err := model.ValidateName(*req.Name); err != nil {
			return upd, err
		}
	}
	if req.Email != nil {
		if err := model.ValidateEmail(*req.Email); err != nil {
			return upd, err
		}
	}
	if req.Password == nil {
		return upd, nil
	}

	if err := model.ValidatePassword(*req.Password); err != nil {
		return upd, err
	}
	if req.CurrentPassword == nil || *req.CurrentPassword == "" {
		return upd, model.ErrCurrentPasswordRequired
	}
	player, err := h.players.GetPlayerByID(ctx, id)
	if err != nil {
		return upd, err
	}
	ok, err := h.players.VerifyPassword(ctx, player.Email, *req.CurrentPassword)
	if err != nil {
		return upd, err
	}
	if !ok {
		return upd, model.ErrCurrentPasswordIncorrect
	}

	hash, err := h.players.HashPassword(*req.Password)
	if err != nil {
		return upd, err
	}
	upd.Password = &hash
	if upd.PasswordAttempts == nil {
		zero := 0
		upd.PasswordAttempts = &zero
	}
	return upd, nil
}

func validateNew(req request.CreatePlayerRequest) error {
	if err := model.ValidateName(req.Name); err != nil {
		return err
	}
	if err := model.ValidateEmail(req.Email); err != nil {
		return err
	}
	return model.ValidatePassword(req.Password)
}
