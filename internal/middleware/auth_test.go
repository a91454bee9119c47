package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"focusgram/internal/cache"
	"focusgram/internal/session"
	"focusgram/internal/store"
	"focusgram/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHolder(t *testing.T) *session.Holder {
	t.Helper()
	return session.NewHolder(store.New(), testutil.NewMemoryBackend(), testutil.NewStubAuthenticator(), cache.NewSessionMarkerStore(nil))
}

func TestSessionRequired(t *testing.T) {
	holder := newTestHolder(t)
	_, err := holder.SignUp(context.Background(), "alice@example.com", "alice", "Alice", "SecurePass12")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/protected", SessionRequired(holder), func(c *fiber.Ctx) error {
		return c.SendString(ViewerID(c))
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"malformed header", "Token abc", fiber.StatusUnauthorized},
		{"token for no active session", "Bearer some-other-token", fiber.StatusUnauthorized},
		{"active session token", "Bearer " + holder.Token(), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSessionRequiredAfterSignOut(t *testing.T) {
	holder := newTestHolder(t)
	_, err := holder.SignUp(context.Background(), "alice@example.com", "alice", "Alice", "SecurePass12")
	require.NoError(t, err)
	token := holder.Token()

	app := fiber.New()
	app.Get("/protected", SessionRequired(holder), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	holder.SignOut(context.Background())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketSessionRequiredQueryToken(t *testing.T) {
	holder := newTestHolder(t)
	_, err := holder.SignUp(context.Background(), "alice@example.com", "alice", "Alice", "SecurePass12")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/ws", WebSocketSessionRequired(holder), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+holder.Token(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ws?token=bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
