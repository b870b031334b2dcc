package model

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed player errors via errors.Is
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerAlreadyExists = errors.New("player already exists")
)

// PlayerNotFoundError is returned when a lookup by id or email has no match.
// Exactly one of ID and Email identifies the missing player.
type PlayerNotFoundError struct {
	ID    PlayerID
	Email string
}

func (e *PlayerNotFoundError) Error() string {
	if e.Email != "" {
		return fmt.Sprintf("player with email %s not found", e.Email)
	}
	return fmt.Sprintf("player with id %d not found", e.ID)
}

// Is matches ErrPlayerNotFound
func (e *PlayerNotFoundError) Is(target error) bool {
	return target == ErrPlayerNotFound
}

// PlayerAlreadyExistsError is returned when an email is already taken
type PlayerAlreadyExistsError struct {
	Email string
}

func (e *PlayerAlreadyExistsError) Error() string {
	return fmt.Sprintf("player with email %s already exists", e.Email)
}

// Is matches ErrPlayerAlreadyExists
func (e *PlayerAlreadyExistsError) Is(target error) bool {
	return target == ErrPlayerAlreadyExists
}

// NotFoundByID builds a PlayerNotFoundError for an id lookup
func NotFoundByID(id PlayerID) error {
	return &PlayerNotFoundError{ID: id}
}

// NotFoundByEmail builds a PlayerNotFoundError for an email lookup
func NotFoundByEmail(email string) error {
	return &PlayerNotFoundError{Email: email}
}
