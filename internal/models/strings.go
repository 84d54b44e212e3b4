package models

import "strings"

// Identifier and message limits, counted in runes.
const (
	MaxIdentifierLen = 64
	MaxMessageLen    = 4000
)

// Clip truncates s to at most limit runes.
func Clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// NormalizeKey trims surrounding whitespace and clips the result to the
// identifier limit. Used for identities and room keys.
func NormalizeKey(s string) string {
	return Clip(strings.TrimSpace(s), MaxIdentifierLen)
}
