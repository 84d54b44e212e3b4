package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetIdentity hands out a fresh identity suggestion. Identities are
// caller-supplied strings; this endpoint is a convenience for clients
// that do not care what they are called.
func (h *Handler) GetIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": uuid.NewString()})
}
