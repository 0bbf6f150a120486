package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id := Generate(12)
	assert.Len(t, id, 12)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(chars, r), "unexpected rune %q", r)
	}
}

func TestDocument(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := Document()
		assert.Len(t, id, DocumentIDLength)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
