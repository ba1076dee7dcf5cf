package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	xlogger "CryptoIntel/pkg/logger"
)

// Handler upgrades HTTP requests into subscriber connections.
type Handler struct {
	hub      *Hub
	terminal Terminal
	upgrader websocket.Upgrader
	logger   *xlogger.Logger
	metrics  repository.Metrics
}

func NewHandler(hub *Hub, terminal Terminal, logger *xlogger.Logger, metrics repository.Metrics) *Handler {
	return &Handler{
		hub:      hub,
		terminal: terminal,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger.With("ws-handler"),
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.serve)
}

func (h *Handler) serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("upgrade failed", xlogger.Error(err))
		return err
	}

	// The request context dies once the connection is hijacked, so
	// command execution runs on its own context.
	ctx := context.Background()
	client := newClient(h.hub, conn, h.terminal, h.logger, h.metrics)

	// The full snapshot is queued before the client joins the hub, so
	// no broadcast tick can land ahead of the initial view.
	client.enqueue(models.InitialMessage(h.terminal.Snapshot(ctx)))
	h.hub.register <- client

	go client.writePump()
	go client.readPump(ctx)
	return nil
}
