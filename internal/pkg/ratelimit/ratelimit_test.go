package ratelimit

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/internal/pkg/usercontext"
)

func TestLimiter_PerUser(t *testing.T) {
	t.Setenv("API_RATE_LIMIT", "2")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-User"); id == "1" {
			usercontext.Set(c, usercontext.UserContext{UserID: 1, IsLoggedIn: true})
		}
		return c.Next()
	})
	app.Use(New(nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	call := func(user string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, call("1"))
	assert.Equal(t, fiber.StatusNoContent, call("1"))
	assert.Equal(t, fiber.StatusTooManyRequests, call("1"))

	// Anonymous callers count against their IP, not the user.
	assert.Equal(t, fiber.StatusNoContent, call(""))
}
