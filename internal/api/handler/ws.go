package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"relaygo/backend/internal/chathub"
	"relaygo/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and hands it to the
// coordinator. The identity comes from the id query parameter; a
// missing identity is refused before the upgrade. A duplicate identity
// is rejected after the upgrade with a user:error push followed by a
// forced close, so the client learns why it was dropped.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	identity := models.NormalizeKey(c.Query("id"))
	if identity == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &chathub.WebSocketClient{
		UserID:      identity,
		Conn:        conn,
		Coordinator: h.Coordinator,
		Send:        make(chan models.ServerEvent, h.SendBufferSize),
		Log:         h.Log,
	}

	// Register before the pumps start: the registered/error push is
	// buffered and flushed by the write pump either way.
	err = h.Coordinator.Register(client)
	client.Run()
	if err != nil {
		h.Log.Info("connection refused", "identity", identity, "reason", err)
	}
}
