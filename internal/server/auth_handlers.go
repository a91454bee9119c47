package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"focusgram/internal/models"
	"focusgram/internal/notifications"
)

// publishIdentity tells connected clients the viewer changed so they rebuild
// viewer-relative state.
func (s *Server) publishIdentity(c *fiber.Ctx, id string) {
	if s.notifier == nil {
		return
	}
	event := notifications.Event{Type: notifications.EventIdentity, ID: id}
	if err := s.notifier.Publish(c.UserContext(), event); err != nil {
		slog.Warn("identity event publish failed", "error", err)
	}
}

// Signup handles POST /api/auth/signup. On success the new account becomes
// the active session.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.session.SignUp(c.UserContext(), req.Email, req.Username, req.Name, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	s.publishIdentity(c, user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": s.session.Token(),
		"user":  user,
	})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.session.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	s.publishIdentity(c, user.ID)

	return c.JSON(fiber.Map{
		"token": s.session.Token(),
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. Always succeeds; the record store is
// left intact so public content keeps rendering.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.session.SignOut(c.UserContext())
	s.publishIdentity(c, "")
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// GetSession handles GET /api/auth/session, reporting the active viewer.
func (s *Server) GetSession(c *fiber.Ctx) error {
	viewer := s.session.CurrentViewer()
	if viewer == nil {
		return c.JSON(fiber.Map{
			"authenticated": false,
		})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          viewer,
	})
}
