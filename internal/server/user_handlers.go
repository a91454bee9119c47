package server

import (
	"github.com/gofiber/fiber/v2"

	"focusgram/internal/models"
)

// GetProfile handles GET /api/users/:username, returning the user's record
// and their posts in feed order.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	user, ok := s.records.UserByUsername(username)
	if !ok {
		return models.RespondWithError(c, models.NewNotFoundError("User", username))
	}

	viewer := s.session.CurrentViewer()
	profile := fiber.Map{
		"user":  user,
		"posts": s.state.ProfileFeed(user.ID),
	}
	if viewer != nil {
		profile["isFollowing"] = viewer.Following.Contains(user.ID)
	}
	return c.JSON(profile)
}

// ToggleFollow handles POST /api/users/:id/follow. Each call flips the state
// and adjusts both follower counters.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	following, err := s.state.ToggleFollow(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"isFollowing": following,
	})
}
