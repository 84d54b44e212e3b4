package chathub_test

import (
	"relaygo/backend/internal/models"
)

// MockClient is a test double for the chathub.Client interface. Its
// receive channel stays open after Close so tests can drain whatever
// the coordinator pushed.
type MockClient struct {
	userID string
	alive  bool
	Recv   chan models.ServerEvent
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID: userID,
		alive:  true,
		Recv:   make(chan models.ServerEvent, 32),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) Alive() bool { return c.alive }

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.Recv }

func (c *MockClient) Run() {}

func (c *MockClient) Close() { c.alive = false }

// Drain returns everything currently buffered on the receive channel.
func (c *MockClient) Drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.Recv:
			events = append(events, ev)
		default:
			return events
		}
	}
}
