package tourplanner

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/keylock"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/metrics"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

// DateLayout is the layout of scheduled dates.
const DateLayout = "2006-01-02"

// PlanInput describes a tour to create.
type PlanInput struct {
	ScheduledAt            time.Time `json:"scheduled_at"`
	TeamID                 uint      `json:"team_id"`
	VehicleID              uint      `json:"vehicle_id"`
	ZoneIDs                []uint    `json:"zone_ids"`
	EstimatedDurationHours float64   `json:"estimated_duration_hours"`
	EstimatedDistanceKm    float64   `json:"estimated_distance_km"`
}

// Service plans tours and drives their lifecycle.
type Service struct {
	repos *repository.Repositories
	tx    repository.Transactor
	locks *keylock.Locker
	now   func() time.Time
}

// NewService creates a new tour planner service
func NewService(repos *repository.Repositories, tx repository.Transactor, locks *keylock.Locker) *Service {
	if locks == nil {
		locks = keylock.New()
	}
	return &Service{repos: repos, tx: tx, locks: locks, now: time.Now}
}

// SetClock replaces the time source used for lifecycle timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Plan validates feasibility and stores a planned tour with its zones in ranked order.
func (s *Service) Plan(actor lifecycle.Actor, in PlanInput) (*models.Tour, error) {
	if !actor.IsAdmin() {
		return nil, &apperrors.ForbiddenTransitionError{Rule: "only administrators may plan tours"}
	}
	if len(in.ZoneIDs) == 0 {
		return nil, apperrors.Validation("a tour needs at least one zone")
	}
	if in.ScheduledAt.IsZero() {
		return nil, apperrors.Validation("scheduled_at is required")
	}
	if in.EstimatedDurationHours < 0 || in.EstimatedDistanceKm < 0 {
		return nil, apperrors.Validation("duration and distance estimates must not be negative")
	}
	date := in.ScheduledAt.Format(DateLayout)

	unlock := s.locks.Lock("tours:" + date)
	defer unlock()

	team, err := s.repos.Team.GetByID(in.TeamID)
	if err != nil {
		return nil, fmt.Errorf("team %d: %w", in.TeamID, err)
	}
	vehicle, err := s.repos.Vehicle.GetByID(in.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", in.VehicleID, err)
	}
	if !team.Active || !vehicle.Active {
		return nil, apperrors.Validation("team and vehicle must be active")
	}

	zones, err := s.loadZones(in.ZoneIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkSchedule(date, zones); err != nil {
		return nil, err
	}

	ranked, err := Rank(zones)
	if err != nil {
		return nil, err
	}
	if err := CheckCapacity(ranked, vehicle.Capacity); err != nil {
		metrics.RecordCapacityRejection()
		return nil, err
	}

	creator := actor.UserID
	tour := &models.Tour{
		Reference:           uuid.New().String(),
		ScheduledAt:         in.ScheduledAt,
		ScheduledDate:       date,
		TeamID:              team.ID,
		VehicleID:           vehicle.ID,
		Status:              models.TourStatusPlanned,
		TotalFill:           TotalFill(ranked),
		EstimatedDuration:   in.EstimatedDurationHours,
		EstimatedDistanceKm: in.EstimatedDistanceKm,
		CreatedByID:         &creator,
	}
	for i, z := range ranked {
		tour.Stops = append(tour.Stops, models.TourStop{
			ZoneID:     z.ID,
			Position:   i + 1,
			FillAtPlan: z.CurrentFill,
		})
	}
	if err := s.repos.Tour.Create(tour); err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	metrics.RecordTour(models.TourStatusPlanned)
	log.Infof("[Tours] Tour %d (%s) planned for %s with %d zones, %dl of %dl",
		tour.ID, tour.Reference, date, len(tour.Stops), tour.TotalFill, vehicle.Capacity)
	return tour, nil
}

func (s *Service) loadZones(ids []uint) ([]models.Zone, error) {
	unique := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if unique[id] {
			return nil, apperrors.Validation("zone %d listed twice", id)
		}
		unique[id] = true
	}
	zones, err := s.repos.Zone.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(zones) != len(ids) {
		return nil, fmt.Errorf("zones %v: %w", ids, apperrors.ErrNotFound)
	}
	for i := range zones {
		if !zones[i].Active {
			return nil, apperrors.Validation("zone %d is not active", zones[i].ID)
		}
	}
	return zones, nil
}

func (s *Service) checkSchedule(date string, zones []models.Zone) error {
	taken, err := s.repos.Tour.ZonesScheduledOn(date)
	if err != nil {
		return err
	}
	busy := make(map[uint]bool, len(taken))
	for _, id := range taken {
		busy[id] = true
	}
	for _, z := range zones {
		if busy[z.ID] {
			return &apperrors.ScheduleConflictError{ZoneID: z.ID, Date: date}
		}
	}
	return nil
}

// Get returns a tour with its stops
func (s *Service) Get(id uint) (*models.Tour, error) {
	return s.repos.Tour.GetByID(id)
}

// Start moves a tour to in_progress.
func (s *Service) Start(actor lifecycle.Actor, id uint) (*models.Tour, error) {
	return s.move(actor, id, models.TourStatusInProgress)
}

// Cancel releases the tour's zones for the date.
func (s *Service) Cancel(actor lifecycle.Actor, id uint) (*models.Tour, error) {
	return s.move(actor, id, models.TourStatusCancelled)
}

// Complete closes the tour and empties every zone in it.
func (s *Service) Complete(actor lifecycle.Actor, id uint) (*models.Tour, error) {
	return s.move(actor, id, models.TourStatusCompleted)
}

func (s *Service) move(actor lifecycle.Actor, id uint, status string) (*models.Tour, error) {
	if !actor.IsAdmin() {
		return nil, &apperrors.ForbiddenTransitionError{Entity: "tour", ID: id, Rule: "only administrators may change tours"}
	}
	unlock := s.locks.Lock(keylock.Key("tour", id))
	defer unlock()

	tour, err := s.repos.Tour.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tour.IsClosed() {
		return nil, &apperrors.IllegalTransitionError{
			Entity: "tour",
			ID:     tour.ID,
			From:   tour.Status,
			Action: status,
			Rule:   "tour is already completed or cancelled",
		}
	}

	now := s.now()
	switch status {
	case models.TourStatusInProgress:
		tour.StartedAt = &now
	case models.TourStatusCompleted:
		tour.CompletedAt = &now
	case models.TourStatusCancelled:
		tour.CancelledAt = &now
	}
	tour.Status = status

	if status != models.TourStatusCompleted {
		if err := s.repos.Tour.UpdateStatus(tour); err != nil {
			return nil, fmt.Errorf("failed to update tour: %w", err)
		}
		metrics.RecordTour(status)
		log.Infof("[Tours] Tour %d is now %s", tour.ID, status)
		return tour, nil
	}

	zoneIDs := tour.ZoneIDs()
	sort.Slice(zoneIDs, func(i, j int) bool { return zoneIDs[i] < zoneIDs[j] })
	for _, zid := range zoneIDs {
		release := s.locks.Lock(keylock.Key("zone", zid))
		defer release()
	}

	err = s.tx.WithinTransaction(func(repos *repository.Repositories) error {
		if err := repos.Tour.UpdateStatus(tour); err != nil {
			return err
		}
		for _, zid := range zoneIDs {
			zone, err := repos.Zone.GetByID(zid)
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Warnf("[Tours] Zone %d of tour %d no longer exists", zid, tour.ID)
				continue
			}
			if err != nil {
				return err
			}
			if !zonestate.ApplyEmptying(zone, now) {
				log.Infof("[Tours] Zone %d has a newer fill write, emptying skipped", zid)
				continue
			}
			if _, err := repos.Zone.UpdateFill(zone); err != nil {
				return fmt.Errorf("failed to empty zone %d: %w", zid, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTour(status)
	log.Infof("[Tours] Tour %d completed, %d zones emptied", tour.ID, len(zoneIDs))
	return tour, nil
}

// Candidates returns active zones not yet scheduled on date, ranked for planning.
func (s *Service) Candidates(date string) ([]zonestate.Snapshot, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	zones, err := s.repos.Zone.ListActive()
	if err != nil {
		return nil, err
	}
	taken, err := s.repos.Tour.ZonesScheduledOn(date)
	if err != nil {
		return nil, err
	}
	busy := make(map[uint]bool, len(taken))
	for _, id := range taken {
		busy[id] = true
	}
	free := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		if !busy[z.ID] {
			free = append(free, z)
		}
	}
	ranked, err := Rank(free)
	if err != nil {
		return nil, err
	}
	result := make([]zonestate.Snapshot, 0, len(ranked))
	for i := range ranked {
		snap, err := zonestate.Describe(&ranked[i])
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	return result, nil
}
