package shortid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGeneratesURLSafeIDs(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.New()
		assert.Len(t, id, Length)
		assert.False(t, strings.ContainsAny(id, "+/= "), "id %q not url safe", id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}
