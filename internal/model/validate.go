package model

import (
	"errors"
	"net/mail"
	"strings"
)

// Password length limits. bcrypt reads at most 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// Validation errors shared by the JSON API and the HTML forms
var (
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not a valid address")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")

	ErrCurrentPasswordRequired  = errors.New("current password is required to set a new one")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrPasswordAttemptsInvalid  = errors.New("password attempts cannot be negative")
)

// ValidateName checks a display name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateEmail checks that email is a bare address such as a@example.com
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks a new plaintext password
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
