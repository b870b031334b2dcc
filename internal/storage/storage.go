// Package storage defines the persistence contract for players and the
// gateway that scopes every unit of work to one transaction.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/samber/oops"
)

// Session is the unit-of-work handle handed to a WithSession body.
// It is only valid until the body returns.
type Session interface {
	// PlayerByID returns (nil, nil) when no player has the id
	PlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// PlayerByEmail returns (nil, nil) when no player has the email
	PlayerByEmail(ctx context.Context, email string) (*model.Player, error)
	Players(ctx context.Context) ([]*model.Player, error)
	// InsertPlayer stores p and sets p.ID
	InsertPlayer(ctx context.Context, p *model.Player) error
	UpdatePlayer(ctx context.Context, p *model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error
}

// Tx is a Session that can be finalised exactly once
type Tx interface {
	Session
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Backend opens transactions against a concrete store
type Backend interface {
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// StoreError is a failure reported by a backend
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for op, tagging it with an oops code.
// An error that is already a StoreError is returned unchanged.
func NewStoreError(op, code string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: oops.Code(code).With("operation", op).Wrap(err)}
}

// IsStoreError reports whether err came from a backend
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
