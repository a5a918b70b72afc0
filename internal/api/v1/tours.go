package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/tourplanner"
)

func tourResponse(t *models.Tour) TourResponse {
	at := t.ScheduledAt
	start := tourplanner.TimeOfDay(at.Hour()*60 + at.Minute())
	return TourResponse{
		Tour:             t,
		EstimatedEndTime: tourplanner.EstimatedEndTime(start, t.EstimatedDuration).String(),
	}
}

// PlanTour ranks the requested zones and stores a planned tour (admin).
func (s *APIServer) PlanTour(c *fiber.Ctx) error {
	var req planTourRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	tour, err := s.Tours.Plan(actor(c), tourplanner.PlanInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tourResponse(tour))
}

func (s *APIServer) GetTour(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	tour, err := s.Tours.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tourResponse(tour))
}

// StartTour, CompleteTour and CancelTour move a tour between states (admin).
func (s *APIServer) StartTour(c *fiber.Ctx) error {
	return s.moveTour(c, s.Tours.Start)
}

func (s *APIServer) CompleteTour(c *fiber.Ctx) error {
	return s.moveTour(c, s.Tours.Complete)
}

func (s *APIServer) CancelTour(c *fiber.Ctx) error {
	return s.moveTour(c, s.Tours.Cancel)
}

func (s *APIServer) moveTour(c *fiber.Ctx, move func(a lifecycle.Actor, id uint) (*models.Tour, error)) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	tour, err := move(actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tourResponse(tour))
}

// TourCandidates lists active zones still free on ?date=YYYY-MM-DD, ranked.
func (s *APIServer) TourCandidates(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return fail(c, fiber.StatusBadRequest, "bad_request", fmt.Sprintf("query parameter date (%s) is required", tourplanner.DateLayout))
	}
	list, err := s.Tours.Candidates(date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"date": date, "zones": list})
}
