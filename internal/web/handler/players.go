package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/web/middleware"
	"github.com/cantis/FlaskFactor2/internal/web/templates/pages"
)

// PlayersHandler handles the player management pages
type PlayersHandler struct {
	players *players.Service
	logger  *slog.Logger
}

// NewPlayersHandler creates a new PlayersHandler
func NewPlayersHandler(playerService *players.Service, logger *slog.Logger) *PlayersHandler {
	return &PlayersHandler{players: playerService, logger: logger}
}

// List handles GET /players/
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.players.GetAllPlayers(r.Context())
	if err != nil {
		internalError(w, r, h.logger, "list players", err)
		return
	}

	data := pages.PlayerListData{
		PageData: pageData(r, "Players"),
		Players:  all,
	}
	render(w, r, h.logger, http.StatusOK, pages.PlayerList(data))
}

// AddForm handles GET /players/add
func (h *PlayersHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	data := pages.PlayerFormData{PageData: pageData(r, "Add player")}
	render(w, r, h.logger, http.StatusOK, pages.PlayerForm(data))
}

// Create handles POST /players
func (h *PlayersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.RenderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	data := pages.PlayerFormData{
		PageData:    pageData(r, "Add player"),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		FieldErrors: make(map[string]string),
	}
	password := r.FormValue("password")

	checkField(data.FieldErrors, "name", model.ValidateName(data.Name))
	checkField(data.FieldErrors, "email", model.ValidateEmail(data.Email))
	checkField(data.FieldErrors, "password", model.ValidatePassword(password))
	if len(data.FieldErrors) > 0 {
		render(w, r, h.logger, http.StatusBadRequest, pages.PlayerForm(data))
		return
	}

	player, err := h.players.AddPlayer(r.Context(), data.Name, data.Email, password)
	if errors.Is(err, model.ErrPlayerAlreadyExists) {
		data.FieldErrors["email"] = "A player with this email already exists"
		render(w, r, h.logger, http.StatusConflict, pages.PlayerForm(data))
		return
	}
	if err != nil {
		internalError(w, r, h.logger, "add player", err)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Player "+player.Name+" added successfully")
	http.Redirect(w, r, "/players/", http.StatusSeeOther)
}

// EditForm handles GET /players/{id}
func (h *PlayersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	player, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}

	data := pages.PlayerFormData{
		PageData:         pageData(r, "Edit player"),
		PlayerID:         player.ID,
		Name:             player.Name,
		Email:            player.Email,
		IsActive:         player.IsActive,
		ResetPassword:    player.ResetPassword,
		PasswordAttempts: player.PasswordAttempts,
	}
	render(w, r, h.logger, http.StatusOK, pages.PlayerForm(data))
}

// Update handles POST /players/{id}. A new password is only applied when the
// current one is supplied and correct.
func (h *PlayersHandler) Update(w http.ResponseWriter, r *http.Request) {
	player, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		middleware.RenderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	data := pages.PlayerFormData{
		PageData:         pageData(r, "Edit player"),
		PlayerID:         player.ID,
		Name:             strings.TrimSpace(r.FormValue("name")),
		Email:            strings.TrimSpace(r.FormValue("email")),
		IsActive:         r.FormValue("is_active") == "on",
		ResetPassword:    r.FormValue("reset_password") == "on",
		PasswordAttempts: player.PasswordAttempts,
		FieldErrors:      make(map[string]string),
	}
	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	checkField(data.FieldErrors, "name", model.ValidateName(data.Name))
	checkField(data.FieldErrors, "email", model.ValidateEmail(data.Email))

	upd := model.PlayerUpdate{
		Name:          &data.Name,
		Email:         &data.Email,
		IsActive:      &data.IsActive,
		ResetPassword: &data.ResetPassword,
	}

	if newPassword != "" || current != "" {
		hash, err := h.changePassword(r, player, current, newPassword, data.FieldErrors)
		if err != nil {
			internalError(w, r, h.logger, "change password", err)
			return
		}
		if hash != "" {
			upd.Password = &hash
		}
	}
	if upd.Password != nil || r.FormValue("clear_attempts") == "on" {
		zero := 0
		upd.PasswordAttempts = &zero
	}

	if len(data.FieldErrors) > 0 {
		render(w, r, h.logger, http.StatusBadRequest, pages.PlayerForm(data))
		return
	}

	updated, err := h.players.UpdatePlayer(r.Context(), player.ID, upd)
	switch {
	case errors.Is(err, model.ErrPlayerAlreadyExists):
		data.FieldErrors["email"] = "A player with this email already exists"
		render(w, r, h.logger, http.StatusConflict, pages.PlayerForm(data))
		return
	case errors.Is(err, model.ErrPlayerNotFound):
		middleware.RenderError(w, r, http.StatusNotFound, "Player not found")
		return
	case err != nil:
		internalError(w, r, h.logger, "update player", err)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Player "+updated.Name+" updated successfully")
	http.Redirect(w, r, "/players/", http.StatusSeeOther)
}

// Delete handles POST /players/{id}/delete
func (h *PlayersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	player, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}

	err := h.players.DeletePlayer(r.Context(), player.ID)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		middleware.SetFlash(w, middleware.FlashError, "Player not found")
	case err != nil:
		internalError(w, r, h.logger, "delete player", err)
		return
	default:
		middleware.SetFlash(w, middleware.FlashSuccess, "Player "+player.Name+" deleted successfully")
	}
	http.Redirect(w, r, "/players/", http.StatusSeeOther)
}

// changePassword checks the current password and returns the hash of the new
// one. Problems with the input are recorded in fieldErrors.
func (h *PlayersHandler) changePassword(r *http.Request, player *model.Player, current, newPassword string, fieldErrors map[string]string) (string, error) {
	if current == "" {
		fieldErrors["current_password"] = fieldMessage(model.ErrCurrentPasswordRequired)
		return "", nil
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		fieldErrors["new_password"] = fieldMessage(err)
		return "", nil
	}

	ok, err := h.players.VerifyPassword(r.Context(), player.Email, current)
	if err != nil {
		return "", err
	}
	if !ok {
		fieldErrors["current_password"] = fieldMessage(model.ErrCurrentPasswordIncorrect)
		return "", nil
	}
	return h.players.HashPassword(newPassword)
}

// loadPlayer resolves the {id} route variable, rendering the error page when
// the player cannot be loaded
func (h *PlayersHandler) loadPlayer(w http.ResponseWriter, r *http.Request) (*model.Player, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		middleware.RenderError(w, r, http.StatusNotFound, "Player not found")
		return nil, false
	}

	player, err := h.players.GetPlayerByID(r.Context(), model.PlayerID(id))
	if errors.Is(err, model.ErrPlayerNotFound) {
		middleware.RenderError(w, r, http.StatusNotFound, "Player not found")
		return nil, false
	}
	if err != nil {
		internalError(w, r, h.logger, "load player", err)
		return nil, false
	}
	return player, true
}

func checkField(fieldErrors map[string]string, field string, err error) {
	if err != nil {
		fieldErrors[field] = fieldMessage(err)
	}
}

// fieldMessage turns a validation error into a sentence for the form
func fieldMessage(err error) string {
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}
