// Package notice holds the catalog of system-notice texts broadcast to
// rooms. Keeping the strings in one table makes them easy to audit and
// to localize later without touching coordinator logic.
package notice

import "fmt"

const (
	keyCreated      = "created"
	keyJoined       = "joined"
	keyAccepted     = "accepted"
	keyLeft         = "left"
	keyDisconnected = "disconnected"
)

var texts = map[string]string{
	keyCreated:      "%s created the room",
	keyJoined:       "%s joined the room",
	keyAccepted:     "%s joined the room (invited by %s)",
	keyLeft:         "%s left the room",
	keyDisconnected: "%s left the room (disconnected)",
}

func Created(identity string) string { return fmt.Sprintf(texts[keyCreated], identity) }

func Joined(identity string) string { return fmt.Sprintf(texts[keyJoined], identity) }

// Accepted describes an invitee entering a room through an invite.
func Accepted(identity, proposer string) string {
	return fmt.Sprintf(texts[keyAccepted], identity, proposer)
}

func Left(identity string) string { return fmt.Sprintf(texts[keyLeft], identity) }

// Disconnected describes a member removed by the disconnect cascade
// rather than an explicit leave.
func Disconnected(identity string) string {
	return fmt.Sprintf(texts[keyDisconnected], identity)
}
