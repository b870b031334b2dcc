package response

import (
	"time"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
)

// Player represents a player in API responses. The password hash is never
// exposed.
type Player struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	IsActive         bool   `json:"is_active"`
	ResetPassword    bool   `json:"reset_password"`
	PasswordAttempts int    `json:"password_attempts"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:               int64(p.ID),
		Name:             p.Name,
		Email:            p.Email,
		IsActive:         p.IsActive,
		ResetPassword:    p.ResetPassword,
		PasswordAttempts: p.PasswordAttempts,
	}
}

// PlayerList is the response for listing players
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModel converts a slice of players, keeping their order
func PlayerListFromModel(ps []*model.Player) PlayerList {
	out := make([]Player, len(ps))
	for i, p := range ps {
		out[i] = PlayerFromModel(p)
	}
	return PlayerList{Players: out}
}

// AuthResponse is the response for a successful login
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session and its player
func AuthResponseFromSession(s *auth.Session, p *model.Player) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(p),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Health is the response of the health endpoint
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
