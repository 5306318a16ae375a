package server

import (
	"errors"

	"inkwell/internal/media"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServeUpload handles GET /uploads/:filename
func (s *Server) ServeUpload(c *fiber.Ctx) error {
	name := c.Params("filename")
	if !media.ValidName(name) {
		return respondError(c, models.NewNotFoundError("Upload", name))
	}

	obj, err := s.store.Open(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return respondError(c, models.NewNotFoundError("Upload", name))
		}
		return respondError(c, models.NewInternalError(err))
	}

	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(obj.Data)
}
