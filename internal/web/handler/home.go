package handler

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/services/players"
	"github.com/cantis/FlaskFactor2/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	players *players.Service
	logger  *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(playerService *players.Service, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{players: playerService, logger: logger}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{PageData: pageData(r, "Home")}

	if data.Player != nil {
		all, err := h.players.GetAllPlayers(r.Context())
		if err != nil {
			internalError(w, r, h.logger, "list players", err)
			return
		}
		data.PlayerCount = len(all)
	}

	render(w, r, h.logger, http.StatusOK, pages.Home(data))
}
