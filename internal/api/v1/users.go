package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// GetMe returns the caller's account with points and level.
func (s *APIServer) GetMe(c *fiber.Ctx) error {
	user, err := s.Repos.User.GetByID(actor(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetMyNotifications returns the caller's latest in-app notifications.
func (s *APIServer) GetMyNotifications(c *fiber.Ctx) error {
	limit := clamp(c.QueryInt("limit", 20), 1, 100)
	list, err := s.Repos.Notification.ListByUserID(actor(c).UserID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": list})
}

// Leaderboard lists the top citizens by points.
func (s *APIServer) Leaderboard(c *fiber.Ctx) error {
	limit := clamp(c.QueryInt("limit", 10), 1, 100)
	users, err := s.Repos.User.Leaderboard(limit)
	if err != nil {
		return respondError(c, err)
	}
	entries := make([]fiber.Map, 0, len(users))
	for i, u := range users {
		entries = append(entries, fiber.Map{
			"rank":   i + 1,
			"id":     u.ID,
			"name":   u.Name,
			"points": u.Points,
			"level":  u.Level,
		})
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

// DeleteUser removes an account and anonymizes its reports (admin).
func (s *APIServer) DeleteUser(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	n, err := s.Reports.AnonymizeUser(actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted_user_id": id, "anonymized_reports": n})
}
