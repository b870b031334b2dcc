package auth

import (
	"sync"
	"time"

	"github.com/cantis/FlaskFactor2/internal/model"
)

// lockouts remembers until when each locked account is refused. The failed
// attempt count itself is stored on the player.
type lockouts struct {
	mu    sync.Mutex
	until map[model.PlayerID]time.Time
}

func newLockouts() *lockouts {
	return &lockouts{until: make(map[model.PlayerID]time.Time)}
}

func (l *lockouts) lock(id model.PlayerID, until time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.until[id] = until
}

// active reports whether id is locked at now. Expired entries are dropped.
func (l *lockouts) active(id model.PlayerID, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.until[id]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(l.until, id)
		return false
	}
	return true
}

func (l *lockouts) clear(id model.PlayerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.until, id)
}
