package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"relaygo/backend/internal/models"
)

func TestClipCountsRunes(t *testing.T) {
	assert.Equal(t, "abc", models.Clip("abc", 5))
	assert.Equal(t, "abc", models.Clip("abcdef", 3))

	// Multibyte runes are not split.
	assert.Equal(t, "héllo", models.Clip("héllo", 5))
	assert.Equal(t, "hél", models.Clip("héllo", 3))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "room-1", models.NormalizeKey("  room-1\t"))
	assert.Equal(t, "", models.NormalizeKey("   "))

	long := strings.Repeat("k", 100)
	assert.Len(t, models.NormalizeKey(long), models.MaxIdentifierLen)
}
