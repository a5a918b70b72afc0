package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/internal/pkg/zones"
)

// ListZones returns every active zone with its fill state.
func (s *APIServer) ListZones(c *fiber.Ctx) error {
	list, err := s.Zones.ListActive()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"zones": list})
}

// GetZone returns one zone with its fill percentage and urgency.
func (s *APIServer) GetZone(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	snap, err := s.Zones.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// CreateZone registers a new zone (admin).
func (s *APIServer) CreateZone(c *fiber.Ctx) error {
	var req createZoneRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	zone, err := s.Zones.Create(actor(c), zones.CreateInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(zone)
}

// SetZonePriority changes the declared priority of a zone (admin).
func (s *APIServer) SetZonePriority(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	var req priorityRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	zone, err := s.Zones.SetPriority(actor(c), id, req.Priority)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(zone)
}

// DeactivateZone takes a zone out of service (admin).
func (s *APIServer) DeactivateZone(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	zone, err := s.Zones.Deactivate(actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(zone)
}
