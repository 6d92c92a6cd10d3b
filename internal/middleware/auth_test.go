package middleware_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"librarium/internal/auth"
	"librarium/internal/middleware"
	"librarium/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthApp(t *testing.T, users map[string]*models.User) *fiber.App {
	t.Helper()

	middleware.InitAuth(func(_ context.Context, tokenHash string) (*models.User, error) {
		if user, ok := users[tokenHash]; ok {
			return user, nil
		}
		return nil, gorm.ErrRecordNotFound
	})
	t.Cleanup(func() { middleware.InitAuth(nil) })

	app := fiber.New()
	app.Get("/protected", middleware.AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userid": c.Locals("userID")})
	})
	app.Get("/open", middleware.OptionalAuth, func(c *fiber.Ctx) error {
		if uid, ok := c.Locals("userID").(uint); ok {
			return c.JSON(fiber.Map{"userid": uid})
		}
		return c.JSON(fiber.Map{"userid": nil})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	token := "opaque-token"
	app := newAuthApp(t, map[string]*models.User{
		auth.HashToken(token): {ID: 7, Username: "alice"},
	})

	// no token
	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// wrong token
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// bearer header
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"userid":7`)

	// query parameter fallback
	req = httptest.NewRequest("GET", "/protected?token="+token, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// malformed header does not fall back to the query parameter
	req = httptest.NewRequest("GET", "/protected?token="+token, nil)
	req.Header.Set("Authorization", "Basic something")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuth(t *testing.T) {
	token := "opaque-token"
	app := newAuthApp(t, map[string]*models.User{
		auth.HashToken(token): {ID: 7, Username: "alice"},
	})

	req := httptest.NewRequest("GET", "/open", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"userid":null`)

	req = httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"userid":7`)
}
