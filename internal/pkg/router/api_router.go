package router

import (
	"github.com/gofiber/fiber/v2"

	apiv1 "github.com/ManuelReschke/CleanCity/internal/api/v1"
	"github.com/ManuelReschke/CleanCity/internal/pkg/metrics"
	"github.com/ManuelReschke/CleanCity/internal/pkg/ratelimit"
)

type ApiRouter struct {
	server  *apiv1.APIServer
	auth    fiber.Handler
	storage fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", metrics.Middleware())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "CleanCity API, see /api/v1",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.server, h.auth, ratelimit.New(h.storage))
}

// NewApiRouter wires the v1 server behind auth. A nil storage keeps the
// rate limiter counters in memory.
func NewApiRouter(server *apiv1.APIServer, auth fiber.Handler, storage fiber.Storage) *ApiRouter {
	return &ApiRouter{server: server, auth: auth, storage: storage}
}
