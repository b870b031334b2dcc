package auth

import (
	"strconv"

	"github.com/cantis/FlaskFactor2/internal/model"
)

// Principal is the identity attached to an authenticated request
type Principal interface {
	ID() string
	Active() bool
}

// PlayerPrincipal adapts a player record to Principal
type PlayerPrincipal struct {
	Player *model.Player
}

var _ Principal = PlayerPrincipal{}

func (p PlayerPrincipal) ID() string {
	return strconv.FormatInt(int64(p.Player.ID), 10)
}

func (p PlayerPrincipal) Active() bool {
	return p.Player.IsActive
}
