package server

import (
	"github.com/gofiber/fiber/v2"

	"focusgram/internal/models"
	"focusgram/internal/viewmodel"
)

// GetFeed handles GET /api/feed. The posts come back newest-first with
// authors inlined and viewer-relative flags computed.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"posts": s.state.Feed(),
	})
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")
	post, ok := s.records.Post(id)
	if !ok {
		return models.RespondWithError(c, models.NewNotFoundError("Post", id))
	}
	view := viewmodel.BuildPost(s.records.Users(), post, s.session.CurrentViewer())
	return c.JSON(view)
}

// CreatePost handles POST /api/posts. The response reflects the local state
// immediately; persistence happens asynchronously.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Media   []models.Media `json:"media"`
		Caption string         `json:"caption"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.state.CreatePost(c.UserContext(), req.Media, req.Caption)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	view := viewmodel.BuildPost(s.records.Users(), post, s.session.CurrentViewer())
	return c.Status(fiber.StatusCreated).JSON(view)
}

// CreateComment handles POST /api/posts/:id/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.state.AddComment(c.UserContext(), c.Params("id"), req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ToggleLike handles POST /api/posts/:id/like. Each call flips the state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	liked, err := s.state.ToggleLike(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"isLiked": liked,
	})
}

// ToggleSave handles POST /api/posts/:id/save.
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	saved, err := s.state.ToggleSave(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"isSaved": saved,
	})
}
