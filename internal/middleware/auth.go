// Package middleware provides the request-level auth, logging, rate-limit,
// and tracing handlers.
package middleware

import (
	"strings"

	"focusgram/internal/models"
	"focusgram/internal/session"

	"github.com/gofiber/fiber/v2"
)

const viewerIDLocal = "viewerID"

// SessionRequired guards routes that act as the current viewer. The bearer
// token must match the single active session; a token that validates
// cryptographically but belongs to no active session is still rejected.
func SessionRequired(holder *session.Holder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, models.NewUnauthenticatedError())
		}
		if active := holder.Token(); active == "" || token != active {
			return models.RespondWithError(c, models.NewUnauthenticatedError())
		}
		viewer := holder.CurrentViewer()
		if viewer == nil {
			return models.RespondWithError(c, models.NewUnauthenticatedError())
		}
		c.Locals(viewerIDLocal, viewer.ID)
		return c.Next()
	}
}

// WebSocketSessionRequired accepts the token from the "token" query parameter
// because browser WebSocket clients cannot set an Authorization header.
func WebSocketSessionRequired(holder *session.Holder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" || token != holder.Token() {
			return models.RespondWithError(c, models.NewUnauthenticatedError())
		}
		if viewer := holder.CurrentViewer(); viewer != nil {
			c.Locals(viewerIDLocal, viewer.ID)
		}
		return c.Next()
	}
}

// ViewerID returns the authenticated viewer id stored by SessionRequired.
func ViewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(viewerIDLocal).(string); ok {
		return id
	}
	return ""
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
