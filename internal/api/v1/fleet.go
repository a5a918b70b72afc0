package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/app/models"
)

func (s *APIServer) ListTeams(c *fiber.Ctx) error {
	teams, err := s.Repos.Team.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teams": teams})
}

// CreateTeam registers a collection team (admin route).
func (s *APIServer) CreateTeam(c *fiber.Ctx) error {
	var req createTeamRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	team := &models.Team{Name: req.Name, MemberCount: req.MemberCount, Active: true}
	if err := s.Repos.Team.Create(team); err != nil {
		return respondError(c, err)
	}
	log.Infof("[Fleet] Team %d (%s) created", team.ID, team.Name)
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (s *APIServer) ListVehicles(c *fiber.Ctx) error {
	vehicles, err := s.Repos.Vehicle.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"vehicles": vehicles})
}

// CreateVehicle registers a vehicle with its capacity in litres (admin route).
func (s *APIServer) CreateVehicle(c *fiber.Ctx) error {
	var req createVehicleRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	vehicle := &models.Vehicle{Plate: req.Plate, Capacity: req.Capacity, Active: true}
	if err := s.Repos.Vehicle.Create(vehicle); err != nil {
		return respondError(c, err)
	}
	log.Infof("[Fleet] Vehicle %d (%s) created, %dl", vehicle.ID, vehicle.Plate, vehicle.Capacity)
	return c.Status(fiber.StatusCreated).JSON(vehicle)
}
