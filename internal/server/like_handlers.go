package server

import (
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Like handles POST /v1/like/:contentid
func (s *Server) Like(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.likeService.Like(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}

// Unlike handles DELETE /v1/like/:contentid
func (s *Server) Unlike(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.likeService.Unlike(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}
