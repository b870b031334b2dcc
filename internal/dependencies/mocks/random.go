package mocks

import (
	"strings"
	"sync"

	"github.com/cantis/FlaskFactor2/internal/dependencies/random"
)

// MockRandom returns queued strings, then deterministic fallbacks
type MockRandom struct {
	mu      sync.Mutex
	strings []string
	calls   int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom(queued ...string) *MockRandom {
	return &MockRandom{strings: queued}
}

// Intn always returns 0
func (r *MockRandom) Intn(n int) int {
	return 0
}

// String pops the next queued value. Once the queue is empty it returns a
// string of length built from the call count so successive values differ.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if len(r.strings) > 0 {
		s := r.strings[0]
		r.strings = r.strings[1:]
		return s
	}
	if alphabet == "" || length <= 0 {
		return ""
	}
	c := string(alphabet[r.calls%len(alphabet)])
	return strings.Repeat(c, length)
}

// Queue appends values to return from String
func (r *MockRandom) Queue(values ...string) {
	r.mu.Lock()
	r.strings = append(r.strings, values...)
	r.mu.Unlock()
}
