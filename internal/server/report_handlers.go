package server

import (
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Report handles POST /v1/report/:contentid
func (s *Server) Report(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body means a DEFAULT report.
	_ = c.BodyParser(&req)

	messages, err := s.reportService.Report(c.UserContext(), id, currentUserID(c), req.Reason)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// Unreport handles DELETE /v1/report/:contentid
func (s *Server) Unreport(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req)

	if err := s.reportService.Unreport(c.UserContext(), id, currentUserID(c), req.Reason); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}
