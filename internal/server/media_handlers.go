package server

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"focusgram/internal/media"
	"focusgram/internal/middleware"
	"focusgram/internal/models"
)

// UploadMedia handles POST /api/media. It accepts a multipart "file" field,
// normalizes images to WebP, and returns the servable URL for use in a
// subsequent post creation.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Missing file upload"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	stored, err := s.media.Store(c.UserContext(), media.Upload{
		OwnerID:     middleware.ViewerID(c),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":  stored.URL,
		"type": stored.Kind,
	})
}
