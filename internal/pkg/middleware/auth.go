package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/internal/pkg/usercontext"
)

// RequireAuth ensures an authenticated caller and returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return deny(c, fiber.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return c.Next()
}

// RequireAdmin ensures an authenticated administrator and returns JSON 403 otherwise.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return deny(c, fiber.StatusUnauthorized, "unauthorized", "authentication required")
	}
	if !usercontext.IsAdmin(c) {
		return deny(c, fiber.StatusForbidden, "forbidden", "administrator role required")
	}
	return c.Next()
}
