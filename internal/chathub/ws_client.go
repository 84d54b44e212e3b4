package chathub

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"relaygo/backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Large enough for a 4000-rune message plus envelope overhead.
	maxFrameSize = 32 * 1024
)

// WebSocketClient implements Client over a gorilla/websocket
// connection.
type WebSocketClient struct {
	UserID      string
	Conn        *websocket.Conn
	Coordinator *CoordinatorService
	Send        chan models.ServerEvent
	Log         *slog.Logger

	closed atomic.Bool
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }

func (c *WebSocketClient) Alive() bool { return !c.closed.Load() }

func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close marks the client dead and closes the Send channel, which stops
// the write pump. Idempotent.
func (c *WebSocketClient) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.Send)
	}
}

// readPump decodes inbound frames and hands them to the coordinator.
// When the connection drops it triggers the disconnect cascade.
func (c *WebSocketClient) readPump() {
	defer func() {
		// Mark the client dead before the disconnect cascade runs, so a
		// concurrent Register for the same identity sees a stale slot
		// rather than a live holder.
		c.Close()
		c.Coordinator.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.Log.Warn("read error", "identity", c.UserID, "err", err)
			}
			return
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Log.Warn("dropping malformed frame", "identity", c.UserID, "err", err)
			continue
		}
		c.Coordinator.Dispatch(c, frame)
	}
}

// writePump drains the Send channel into the connection and keeps it
// alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by Close(); tell the peer and stop.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
				c.Log.Warn("write error", "identity", c.UserID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
