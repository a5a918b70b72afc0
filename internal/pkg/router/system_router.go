package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a backing service answers.
type HealthCheck func() error

type SystemRouter struct {
	checks       map[string]HealthCheck
	metricsUsers map[string]string
}

func (h SystemRouter) InstallRouter(app *fiber.App) {
	app.Get("/system/health", h.health)

	handler := adaptor.HTTPHandler(promhttp.Handler())
	if len(h.metricsUsers) > 0 {
		app.Get("/metrics", basicauth.New(basicauth.Config{Users: h.metricsUsers}), handler)
	} else {
		app.Get("/metrics", handler)
	}
}

func (h SystemRouter) health(c *fiber.Ctx) error {
	status := fiber.StatusOK
	result := fiber.Map{}
	for name, check := range h.checks {
		if err := check(); err != nil {
			status = fiber.StatusServiceUnavailable
			result[name] = err.Error()
			continue
		}
		result[name] = "ok"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": map[bool]string{true: "ok", false: "degraded"}[status == fiber.StatusOK],
		"checks": result,
		"time":   time.Now().UTC(),
	})
}

// NewSystemRouter serves health and prometheus metrics. metricsUsers protects
// /metrics with basic auth when not empty.
func NewSystemRouter(checks map[string]HealthCheck, metricsUsers map[string]string) *SystemRouter {
	return &SystemRouter{checks: checks, metricsUsers: metricsUsers}
}
