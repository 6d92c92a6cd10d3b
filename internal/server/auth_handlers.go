package server

import (
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /v1/auth. The credential is verified against the
// identity provider; the response carries a fresh API token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.BodyParser(&req); err != nil || req.Credential == "" {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Credential is required"))
	}

	token, err := s.userService.Login(c.UserContext(), req.Credential)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}

// IsAuth handles GET /v1/auth, reporting whether the presented token
// resolved to an account.
func (s *Server) IsAuth(c *fiber.Ctx) error {
	return c.JSON(models.IsAuthResponse{Authenticated: currentUserID(c) != 0})
}
