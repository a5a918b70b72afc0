package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/internal/pkg/middleware"
)

// RegisterHandlers mounts the v1 routes on router. auth resolves the caller;
// role checks for report, zone and tour actions happen in the services.
// limit runs after auth so callers are counted per user; it may be nil.
func RegisterHandlers(router fiber.Router, s *APIServer, auth, limit fiber.Handler) {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Get("/ping", s.GetPing)
	router.Get("/leaderboard", limit, s.Leaderboard)

	api := router.Group("", auth, middleware.RequireAuth, limit)

	api.Get("/zones", s.ListZones)
	api.Post("/zones", s.CreateZone)
	api.Get("/zones/:id", s.GetZone)
	api.Patch("/zones/:id/priority", s.SetZonePriority)
	api.Delete("/zones/:id", s.DeactivateZone)

	api.Get("/reports/mine", s.ListMyReports)
	api.Post("/reports", s.SubmitReport)
	api.Get("/reports/:id", s.GetReport)
	api.Put("/reports/:id", s.EditReport)
	api.Delete("/reports/:id", s.DeleteReport)
	api.Post("/reports/:id/verify", s.VerifyReport)
	api.Post("/reports/:id/reject", s.RejectReport)
	api.Post("/reports/:id/resolve", s.ResolveReport)

	api.Get("/tours/candidates", s.TourCandidates)
	api.Post("/tours", s.PlanTour)
	api.Get("/tours/:id", s.GetTour)
	api.Post("/tours/:id/start", s.StartTour)
	api.Post("/tours/:id/complete", s.CompleteTour)
	api.Post("/tours/:id/cancel", s.CancelTour)

	api.Get("/teams", s.ListTeams)
	api.Post("/teams", middleware.RequireAdmin, s.CreateTeam)
	api.Get("/vehicles", s.ListVehicles)
	api.Post("/vehicles", middleware.RequireAdmin, s.CreateVehicle)

	api.Get("/users/me", s.GetMe)
	api.Get("/users/me/notifications", s.GetMyNotifications)
	api.Delete("/users/:id", s.DeleteUser)

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Get("/stats", s.GetStats)
	admin.Get("/queue", s.GetQueueStatus)
	admin.Delete("/queue/jobs/:job", s.DeleteQueueJob)
}
