package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	xlogger "CryptoIntel/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Terminal is the data surface a subscriber's commands read from.
type Terminal interface {
	Snapshot(ctx context.Context) *models.Snapshot
	Details(ctx context.Context, symbol string) (*models.MarketAsset, error)
	Whales(ctx context.Context) ([]models.WhaleTransfer, error)
	Signals(ctx context.Context) []models.Signal
}

// Client is one connected subscriber.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	terminal Terminal
	logger   *xlogger.Logger
	metrics  repository.Metrics
}

func newClient(hub *Hub, conn *websocket.Conn, terminal Terminal, logger *xlogger.Logger, metrics repository.Metrics) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		terminal: terminal,
		logger:   logger,
		metrics:  metrics,
	}
}

// enqueue hands one message to the write pump. A full buffer means the
// consumer is not keeping up; the message is dropped rather than
// blocking the caller. Messages for a dropped client are discarded.
func (c *Client) enqueue(msg models.Outbound) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("encode failed", xlogger.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- payload:
	default:
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", xlogger.Error(err))
			}
			return
		}

		var cmd models.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.enqueue(models.ErrorMessage("Invalid command"))
			continue
		}
		c.handleCommand(ctx, cmd)
	}
}

// handleCommand executes one inbound command. Every failure mode is an
// error reply to this subscriber; nothing here closes the connection.
func (c *Client) handleCommand(ctx context.Context, cmd models.Command) {
	c.metrics.RecordCommand(cmd.Command)

	switch cmd.Command {
	case "refresh":
		c.enqueue(models.InitialMessage(c.terminal.Snapshot(ctx)))

	case "details":
		if cmd.Args == nil || cmd.Args.Symbol == "" {
			c.enqueue(models.ErrorMessage("details: symbol argument required"))
			return
		}
		asset, err := c.terminal.Details(ctx, cmd.Args.Symbol)
		if err != nil {
			c.logger.Error("details lookup failed", xlogger.Error(err))
			c.enqueue(models.ErrorMessage("Error executing command"))
			return
		}
		c.enqueue(models.DetailsMessage(asset))

	case "whales":
		batch, err := c.terminal.Whales(ctx)
		if err != nil {
			c.logger.Error("whales lookup failed", xlogger.Error(err))
			c.enqueue(models.ErrorMessage("Error executing command"))
			return
		}
		c.enqueue(models.WhalesMessage(batch))

	case "signals":
		c.enqueue(models.SignalsMessage(c.terminal.Signals(ctx)))

	case "help":
		c.enqueue(models.HelpMessage())

	default:
		c.enqueue(models.ErrorMessage(fmt.Sprintf("Unknown command: %s", cmd.Command)))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
