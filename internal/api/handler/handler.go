package handler

import (
	"log/slog"

	"relaygo/backend/internal/chathub"
)

// Handler exposes the relay over HTTP: the websocket handshake plus a
// couple of helper endpoints.
type Handler struct {
	Coordinator    *chathub.CoordinatorService
	SendBufferSize int
	Log            *slog.Logger
}

func NewHandler(coordinator *chathub.CoordinatorService, sendBufferSize int, log *slog.Logger) *Handler {
	return &Handler{
		Coordinator:    coordinator,
		SendBufferSize: sendBufferSize,
		Log:            log,
	}
}
