package server

import (
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// requireModerator gates the admin tool endpoints.
func (s *Server) requireModerator(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if !user.Moderator {
		return models.NewForbiddenError("Moderator required")
	}
	return nil
}

// PostProcessProject handles GET /v1/tools/post-process/:project
func (s *Server) PostProcessProject(c *fiber.Ctx) error {
	if err := s.requireModerator(c); err != nil {
		return models.RespondWithError(c, err)
	}

	messages, err := s.contentService.PostProcessProject(c.UserContext(), c.Params("project"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// PostProcessContent handles GET /v1/tools/post-process/:project/:contentid
func (s *Server) PostProcessContent(c *fiber.Ctx) error {
	if err := s.requireModerator(c); err != nil {
		return models.RespondWithError(c, err)
	}

	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	messages, err := s.contentService.PostProcess(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// InstanceStats handles GET /v1/stats
func (s *Server) InstanceStats(c *fiber.Ctx) error {
	stats, err := s.statsService.Instance(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(stats)
}
