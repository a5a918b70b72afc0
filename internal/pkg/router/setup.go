package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers the system routes first so that health and metrics
// stay outside the API rate limiter.
func InstallRouter(app *fiber.App, system *SystemRouter, api *ApiRouter) {
	setup(app, system, api)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
