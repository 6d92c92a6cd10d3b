// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"context"
	"strings"

	"librarium/internal/auth"
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenResolver looks an account up by the stored hash of its API token.
type TokenResolver func(ctx context.Context, tokenHash string) (*models.User, error)

var resolveToken TokenResolver

// InitAuth installs the token resolver used by the auth middleware.
func InitAuth(r TokenResolver) {
	resolveToken = r
}

// extractToken pulls the API token from the Authorization header, falling
// back to the token query parameter.
func extractToken(c *fiber.Ctx) string {
	if header := c.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func authenticate(c *fiber.Ctx) *models.User {
	token := extractToken(c)
	if token == "" || resolveToken == nil {
		return nil
	}
	user, err := resolveToken(c.UserContext(), auth.HashToken(token))
	if err != nil {
		return nil
	}
	return user
}

// AuthRequired enforces authentication for protected routes. On success the
// account id and record are stored in Fiber locals.
func AuthRequired(c *fiber.Ctx) error {
	user := authenticate(c)
	if user == nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Authentication required"))
	}
	c.Locals("userID", user.ID)
	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth resolves the token when one is presented and continues either
// way. Handlers see an anonymous request when no locals are set.
func OptionalAuth(c *fiber.Ctx) error {
	if user := authenticate(c); user != nil {
		c.Locals("userID", user.ID)
		c.Locals("user", user)
	}
	return c.Next()
}
