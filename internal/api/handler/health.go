package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz reports liveness plus the current relay occupancy.
func (h *Handler) Healthz(c *gin.Context) {
	clients, rooms := h.Coordinator.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"clients": clients,
		"rooms":   rooms,
	})
}
