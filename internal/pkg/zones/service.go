package zones

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/keylock"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

// CreateInput describes a new collection zone.
type CreateInput struct {
	Name        string  `json:"name"`
	DistrictID  uint    `json:"district_id"`
	Capacity    int     `json:"capacity"`
	CurrentFill int     `json:"current_fill"`
	ZoneType    string  `json:"zone_type"`
	Priority    string  `json:"priority"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Service administers zones. Fill changes never go through here.
type Service struct {
	repos *repository.Repositories
	locks *keylock.Locker
	now   func() time.Time
}

func NewService(repos *repository.Repositories, locks *keylock.Locker) *Service {
	if locks == nil {
		locks = keylock.New()
	}
	return &Service{repos: repos, locks: locks, now: time.Now}
}

func requireAdmin(actor lifecycle.Actor, id uint) error {
	if !actor.IsAdmin() {
		return &apperrors.ForbiddenTransitionError{Entity: "zone", ID: id, Rule: "only admins may manage zones"}
	}
	return nil
}

// Create validates and stores a zone. Capacity must be positive and the
// initial fill must not exceed it.
func (s *Service) Create(actor lifecycle.Actor, in CreateInput) (*models.Zone, error) {
	if err := requireAdmin(actor, 0); err != nil {
		return nil, err
	}
	if in.ZoneType == "" {
		in.ZoneType = models.ZoneTypeResidential
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	zone := &models.Zone{
		Name:          in.Name,
		DistrictID:    in.DistrictID,
		Capacity:      in.Capacity,
		CurrentFill:   in.CurrentFill,
		ZoneType:      in.ZoneType,
		Priority:      in.Priority,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Active:        true,
		FillUpdatedAt: s.now(),
	}
	if err := zonestate.Check(zone); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if err := zone.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if err := s.repos.Zone.Create(zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	log.Infof("[Zones] Zone %d (%s) created with capacity %d", zone.ID, zone.Name, zone.Capacity)
	return zone, nil
}

// Get returns a zone with its derived fill state.
func (s *Service) Get(id uint) (zonestate.Snapshot, error) {
	zone, err := s.repos.Zone.GetByID(id)
	if err != nil {
		return zonestate.Snapshot{}, err
	}
	return zonestate.Describe(zone)
}

// ListActive returns the derived state of every active zone. Zones with
// broken fill data are logged and left out.
func (s *Service) ListActive() ([]zonestate.Snapshot, error) {
	list, err := s.repos.Zone.ListActive()
	if err != nil {
		return nil, err
	}
	out := make([]zonestate.Snapshot, 0, len(list))
	for i := range list {
		snap, err := zonestate.Describe(&list[i])
		if err != nil {
			log.Warnf("[Zones] Skipping zone %d: %v", list[i].ID, err)
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// SetPriority changes the declared priority of a zone.
func (s *Service) SetPriority(actor lifecycle.Actor, id uint, priority string) (*models.Zone, error) {
	if err := requireAdmin(actor, id); err != nil {
		return nil, err
	}
	if models.PriorityRank(priority) == 0 {
		return nil, apperrors.Validation("unknown priority %q", priority)
	}
	return s.update(id, func(z *models.Zone) { z.Priority = priority })
}

// Deactivate hides a zone from planning and submission. Zones are never
// hard-deleted since reports keep referencing them.
func (s *Service) Deactivate(actor lifecycle.Actor, id uint) (*models.Zone, error) {
	if err := requireAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.update(id, func(z *models.Zone) { z.Active = false })
}

func (s *Service) update(id uint, change func(*models.Zone)) (*models.Zone, error) {
	unlock := s.locks.Lock(keylock.Key("zone", id))
	defer unlock()

	zone, err := s.repos.Zone.GetByID(id)
	if err != nil {
		return nil, err
	}
	change(zone)
	if err := s.repos.Zone.Update(zone); err != nil {
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}
	log.Infof("[Zones] Zone %d updated (priority=%s active=%t)", zone.ID, zone.Priority, zone.Active)
	return zone, nil
}
