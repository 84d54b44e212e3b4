package models

import "time"

// Invite is a single-use proposal for ToID to join RoomID without its
// password. It lives until accepted, rejected, or voided by either
// party disconnecting; there is no expiry timer.
type Invite struct {
	// ID is the generated invite token.
	ID string
	// RoomID is the room the target is invited into.
	RoomID string
	// FromID is the proposing identity.
	FromID string
	// ToID is the invited identity.
	ToID string
	// CreatedAt is when the invite was issued.
	CreatedAt time.Time
}
