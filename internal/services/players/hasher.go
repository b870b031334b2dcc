package players

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/cantis/FlaskFactor2/internal/model"
)

// ErrPasswordMismatch is returned by PasswordHasher.Compare when the
// plaintext does not produce the stored hash
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher turns plaintext passwords into stored hashes
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Compare returns ErrPasswordMismatch on a wrong password and another
	// error when the stored hash cannot be read.
	Compare(hash, plaintext string) error
}

// BcryptHasher hashes with bcrypt at a fixed cost
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
