package server

import (
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /v1/tag/:contentid
func (s *Server) ListTags(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	tags, err := s.tagService.List(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.TagListResponse{Tags: tags})
}

// AddTag handles POST /v1/tag/:contentid/:tag
func (s *Server) AddTag(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.tagService.Add(c.UserContext(), id, currentUserID(c), c.Params("tag")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}

// RemoveTag handles DELETE /v1/tag/:contentid/:tag
func (s *Server) RemoveTag(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.tagService.Remove(c.UserContext(), id, currentUserID(c), c.Params("tag")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}

// TagCounts handles GET /v2/tag/:project
func (s *Server) TagCounts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	counts, err := s.tagService.ProjectCounts(c.UserContext(), c.Params("project"), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.TagCountsResponse{Tags: counts})
}
