package chathub

import "relaygo/backend/internal/models"

// Client is the interface for one connected participant. It abstracts
// the underlying transport so the coordinator can manage websocket
// connections and test doubles uniformly.
type Client interface {
	// GetUserID returns the identity bound to this connection.
	GetUserID() string

	// Alive reports whether the connection is still usable. The
	// coordinator re-checks this at the moment of use; a client may
	// disconnect while an operation referencing it is in flight.
	Alive() bool

	// GetSendChannel returns the channel the coordinator writes
	// outbound events to. It is send-only from the caller's side.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()

	// Close terminates the connection and releases its send channel.
	// Safe to call more than once.
	Close()
}
