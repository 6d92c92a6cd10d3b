package server

import (
	"librarium/internal/models"
	"librarium/internal/query"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated account id, zero for anonymous
// requests.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// currentUser returns the authenticated account record, nil for anonymous
// requests.
func currentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals("user").(*models.User); ok {
		return user
	}
	return nil
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, models.NewInvalidArgumentError("Invalid " + name)
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters with the documented
// defaults and bounds.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", query.DefaultLimit)
	offset = c.QueryInt("offset", 0)
	if limit < 1 {
		limit = query.DefaultLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
