package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/ws, the event stream that tells clients
// the view model went stale. Every connected client receives every event.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"event stream unavailable"}`))
			_ = conn.Close()
			return
		}

		s.hub.Register(conn)
		defer func() {
			s.hub.Unregister(conn)
			_ = conn.Close()
		}()

		// Reads are drained only to detect disconnect; the stream is one-way.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn("websocket closed unexpectedly", "error", err)
				}
				return
			}
		}
	})
}
