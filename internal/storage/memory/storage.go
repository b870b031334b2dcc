package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/storage"
)

var errTxDone = errors.New("transaction already finished")

// ErrClosed is returned once the store has been closed
var ErrClosed = errors.New("memory store closed")

// table is the committed state of the store
type table struct {
	players map[model.PlayerID]*model.Player
	nextID  model.PlayerID
}

func (t *table) clone() *table {
	c := &table{
		players: make(map[model.PlayerID]*model.Player, len(t.players)),
		nextID:  t.nextID,
	}
	for id, p := range t.players {
		c.players[id] = p.Clone()
	}
	return c
}

// Storage is an in-memory backend. One transaction runs at a time; it works
// on a copy of the table that is published on commit and dropped on rollback.
type Storage struct {
	// sem holds a token while a transaction is open
	sem chan struct{}

	mu        sync.RWMutex
	committed *table
	closed    atomic.Bool
}

// New creates an empty in-memory store
func New() *Storage {
	return &Storage{
		sem:       make(chan struct{}, 1),
		committed: &table{players: make(map[model.PlayerID]*model.Player), nextID: 1},
	}
}

var _ storage.Backend = (*Storage)(nil)

// Begin blocks until no other transaction is open
func (s *Storage) Begin(ctx context.Context) (storage.Tx, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	return &tx{store: s, work: work}, nil
}

// Ping fails once the store is closed
func (s *Storage) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Close stops new transactions; committed data stays readable through Len
func (s *Storage) Close() {
	s.closed.Store(true)
}

// Len returns the number of committed players
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.committed.players)
}

type tx struct {
	store *Storage
	work  *table
	done  bool
}

func (t *tx) PlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if t.done {
		return nil, errTxDone
	}
	p, ok := t.work.players[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (t *tx) PlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	if t.done {
		return nil, errTxDone
	}
	for _, p := range t.work.players {
		if p.Email == email {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

// Players returns every player ordered by id
func (t *tx) Players(ctx context.Context) ([]*model.Player, error) {
	if t.done {
		return nil, errTxDone
	}
	players := make([]*model.Player, 0, len(t.work.players))
	for _, p := range t.work.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

func (t *tx) InsertPlayer(ctx context.Context, p *model.Player) error {
	if t.done {
		return errTxDone
	}
	if t.emailTaken(p.Email, 0) {
		return &model.PlayerAlreadyExistsError{Email: p.Email}
	}
	p.ID = t.work.nextID
	t.work.nextID++
	t.work.players[p.ID] = p.Clone()
	return nil
}

func (t *tx) UpdatePlayer(ctx context.Context, p *model.Player) error {
	if t.done {
		return errTxDone
	}
	if _, ok := t.work.players[p.ID]; !ok {
		return model.NotFoundByID(p.ID)
	}
	if t.emailTaken(p.Email, p.ID) {
		return &model.PlayerAlreadyExistsError{Email: p.Email}
	}
	t.work.players[p.ID] = p.Clone()
	return nil
}

func (t *tx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if t.done {
		return errTxDone
	}
	if _, ok := t.work.players[id]; !ok {
		return model.NotFoundByID(id)
	}
	delete(t.work.players, id)
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true

	t.store.mu.Lock()
	t.store.committed = t.work
	t.store.mu.Unlock()

	<-t.store.sem
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.work = nil
	<-t.store.sem
	return nil
}

// emailTaken reports whether a player other than except holds email
func (t *tx) emailTaken(email string, except model.PlayerID) bool {
	for id, p := range t.work.players {
		if id != except && p.Email == email {
			return true
		}
	}
	return false
}
