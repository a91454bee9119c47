package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"focusgram/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Hub is a minimal WebSocket hub: every connected client receives every
// event. It listens for Redis pub/sub messages (via Notifier) and fans them
// out to connected clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	observability.WebSocketConnections.Inc()
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		observability.WebSocketConnections.Dec()
	}
	h.mu.Unlock()
}

// Broadcast sends an event to all connections.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Warn("websocket write failed", "error", err)
		}
	}
}

// StartWiring connects the Notifier to this hub: incoming pub/sub events are
// broadcast to every connected client.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, h.Broadcast)
}
