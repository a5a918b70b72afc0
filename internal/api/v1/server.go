package apiv1

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/statistics"
	"github.com/ManuelReschke/CleanCity/internal/pkg/tourplanner"
	"github.com/ManuelReschke/CleanCity/internal/pkg/usercontext"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zones"
)

// Services bundles what the API server delegates to.
type Services struct {
	Repos   *repository.Repositories
	Zones   *zones.Service
	Reports *lifecycle.Service
	Tours   *tourplanner.Service
	Stats   *statistics.Service
	// Queue is optional; without it the queue endpoints answer 503.
	Queue repository.QueueRepository
}

// APIServer serves the v1 JSON API
type APIServer struct {
	Services
	validate *validator.Validate
}

// NewAPIServer creates a new API server instance
func NewAPIServer(s Services) *APIServer {
	return &APIServer{Services: s, validate: validator.New()}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func actor(c *fiber.Ctx) lifecycle.Actor {
	uc := usercontext.GetUserContext(c)
	return lifecycle.Actor{UserID: uc.UserID, Role: uc.Role}
}

// bind parses the JSON body into dst and validates its struct tags.
func (s *APIServer) bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("invalid JSON body: %v", err)
	}
	return s.validate.Struct(dst)
}

func idParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badID(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "bad_request", "id must be a positive integer")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
