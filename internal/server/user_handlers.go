package server

import (
	"librarium/internal/models"
	"librarium/internal/repository"
	"librarium/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /v1/user/:project
func (s *Server) ListUsers(c *fiber.Ctx) error {
	order := repository.UserOrderDate
	if raw := c.Query("order"); raw != "" {
		parsed, err := repository.ParseUserOrder(raw)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		order = parsed
	}
	limit, offset := parsePagination(c)

	users, err := s.userService.ListUsers(c.UserContext(), c.Params("project"), order,
		c.QueryBool("descending", false), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.UserListResponse{Users: users})
}

// GetUser handles GET /v2/user/:project/:userid
func (s *Server) GetUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.GetUser(c.UserContext(), c.Params("project"), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.UserResponse{User: *user})
}

// SetUser handles PUT /v1/user/:userid (moderator only)
func (s *Server) SetUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Banned    *bool `json:"banned"`
		Moderator *bool `json:"moderator"`
		Purge     bool  `json:"purge"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Invalid request body"))
	}

	err = s.userService.SetUser(c.UserContext(), currentUserID(c), targetID, service.UserChanges{
		Banned:    req.Banned,
		Moderator: req.Moderator,
		Purge:     req.Purge,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(models.PlainSuccess{})
}

// ListBans handles GET /v1/bans (moderator only)
func (s *Server) ListBans(c *fiber.Ctx) error {
	entries, err := s.userService.ListBanned(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"bans": entries})
}
