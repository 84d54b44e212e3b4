package chathub_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"relaygo/backend/internal/chathub"
)

func TestIDSourceUnique(t *testing.T) {
	g := chathub.NewIDSource()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next("msg")
		assert.True(t, strings.HasPrefix(id, "msg_"))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
