package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/database"
	"github.com/ManuelReschke/CleanCity/internal/pkg/usercontext"
)

// APIKeyAuthMiddleware authenticates against the global repositories.
func APIKeyAuthMiddleware() fiber.Handler {
	return APIKeyAuth(repository.GetGlobalRepositories().User, touchAPIKey)
}

// APIKeyAuth resolves the X-API-Key or bearer header to a user and stores
// the caller in the user context. touch, if set, records the key usage.
func APIKeyAuth(users repository.UserRepository, touch func(settings *models.UserSettings)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := apiKeyFromHeaders(c)
		if raw == "" {
			return deny(c, fiber.StatusUnauthorized, "unauthorized", "missing API key")
		}
		if !models.LooksLikeAPIKey(raw) {
			return deny(c, fiber.StatusUnauthorized, "unauthorized", "invalid API key")
		}

		user, settings, err := users.GetByAPIKeyHash(models.HashAPIKey(raw))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, apperrors.ErrNotFound):
			return deny(c, fiber.StatusUnauthorized, "unauthorized", "invalid API key")
		case err != nil:
			log.Errorf("[Auth] API key lookup failed: %v", err)
			return deny(c, fiber.StatusInternalServerError, "internal_server_error", "API key verification failed")
		}
		if !user.IsActive() {
			return deny(c, fiber.StatusForbidden, "forbidden", "user is "+user.Status)
		}

		if touch != nil && settings != nil {
			touch(settings)
		}
		usercontext.Set(c, usercontext.UserContext{
			UserID:     user.ID,
			Username:   user.Name,
			Role:       user.Role,
			IsLoggedIn: true,
			IsAdmin:    user.IsAdmin(),
		})
		return c.Next()
	}
}

func deny(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// touchAPIKey records the last use. Failures are only logged.
func touchAPIKey(settings *models.UserSettings) {
	db := database.GetDB()
	if db == nil {
		return
	}
	err := db.Model(&models.UserSettings{}).
		Where("id = ?", settings.ID).
		Update("api_key_last_used_at", time.Now()).Error
	if err != nil {
		log.Warnf("[Auth] Failed to record API key use of user %d: %v", settings.UserID, err)
	}
}

func apiKeyFromHeaders(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get("X-API-Key")); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
