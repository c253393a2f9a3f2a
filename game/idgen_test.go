package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdgen(t *testing.T) {
	t.Parallel()
	g := NewIdGen()

	seen := map[string]struct{}{}
	for i := 0; i < 500; i++ {
		id := g.Generate()
		assert.Len(t, id, roomIdLength)
		for _, c := range id {
			assert.True(t, strings.ContainsRune(roomIdAlphabet, c), "unexpected character %q in %s", c, id)
		}
		_, dup := seen[id]
		assert.False(t, dup, "id %s handed out twice", id)
		seen[id] = struct{}{}
	}

	// Dispose frees the code for reuse.
	first := g.Generate()
	g.Dispose(first)
	_, taken := g.ids[first]
	assert.False(t, taken)
}

func TestWordBank(t *testing.T) {
	t.Parallel()
	w := NewWordBank()

	words := w.Generate(5)
	assert.Len(t, words, 5)
	for _, word := range words {
		assert.Contains(t, wordsList, word)
	}

	assert.Empty(t, w.Generate(0))
}
