package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	for range 200 {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
	assert.Zero(t, r.Intn(0))
}

func TestToken(t *testing.T) {
	tok := Token(New(), 48)

	assert.Len(t, tok, 48)
	for _, c := range tok {
		assert.True(t, strings.ContainsRune(Base62, c), "unexpected rune %q", c)
	}
	assert.NotEqual(t, tok, Token(New(), 48))
	assert.Empty(t, New().String(5, ""))
}
