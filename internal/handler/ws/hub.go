package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	xlogger "CryptoIntel/pkg/logger"
)

// Hub owns the subscriber set. All membership changes flow through its
// run loop, so the broadcast path never contends with connects or
// disconnects.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	count      int32
	logger     *xlogger.Logger
	metrics    repository.Metrics
}

func NewHub(logger *xlogger.Logger, metrics repository.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     logger.With("ws-hub"),
		metrics:    metrics,
	}
}

// Run processes membership and broadcast events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			atomic.StoreInt32(&h.count, int32(len(h.clients)))
			h.metrics.SetSubscribers(len(h.clients))
			h.logger.Info("subscriber connected", xlogger.Int("subscribers", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("subscriber disconnected", xlogger.Int("subscribers", len(h.clients)))
			}

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer; dropping it must not stall the rest.
					h.drop(client)
					h.logger.Warn("subscriber dropped, send buffer full")
				}
			}
		}
	}
}

// drop removes a client and signals its pumps through done. The send
// channel is never closed; a reply enqueued after the drop is discarded
// instead of panicking the sender.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.done)
	atomic.StoreInt32(&h.count, int32(len(h.clients)))
	h.metrics.SetSubscribers(len(h.clients))
}

// SubscriberCount reports the current audience size. Safe to call from
// any goroutine.
func (h *Hub) SubscriberCount() int {
	return int(atomic.LoadInt32(&h.count))
}

// Broadcast queues one message for every subscriber. The payload is
// encoded once, not per client.
func (h *Hub) Broadcast(msg models.Outbound) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("broadcast encode failed", xlogger.Error(err))
		return
	}
	h.broadcast <- payload
}
