package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/keylock"
	"github.com/ManuelReschke/CleanCity/internal/pkg/metrics"
	"github.com/ManuelReschke/CleanCity/internal/pkg/photoref"
	"github.com/ManuelReschke/CleanCity/internal/pkg/rewards"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.ROLE_ADMIN
}

// Notifier is informed after a transition has been committed.
type Notifier interface {
	NotifyReport(userID, reportID uint, kind string, points int) error
}

// SubmitInput is what a citizen sends when creating a report.
type SubmitInput struct {
	ZoneID      uint     `json:"zone_id"`
	FillLevel   float64  `json:"fill_level"`
	Priority    string   `json:"priority"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
}

// EditInput replaces description, fill level and priority and appends photos.
// Nil or empty fields keep the stored value.
type EditInput struct {
	FillLevel   *float64 `json:"fill_level"`
	Priority    string   `json:"priority"`
	Description *string  `json:"description"`
	AddPhotos   []string `json:"add_photos"`
}

// Service runs the report lifecycle against the repositories.
type Service struct {
	repos    *repository.Repositories
	tx       repository.Transactor
	rewards  *rewards.Engine
	locks    *keylock.Locker
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new lifecycle service. notifier may be nil.
func NewService(repos *repository.Repositories, tx repository.Transactor, engine *rewards.Engine, locks *keylock.Locker, notifier Notifier) *Service {
	if locks == nil {
		locks = keylock.New()
	}
	return &Service{
		repos:    repos,
		tx:       tx,
		rewards:  engine,
		locks:    locks,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for every timestamp.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Submit creates a pending report and moves the zone fill to the reported level.
func (s *Service) Submit(actor Actor, in SubmitInput) (*models.Report, error) {
	if err := validatePayload(in.Description, in.Photos, in.FillLevel); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}

	unlock := s.locks.Lock(keylock.Key("zone", in.ZoneID))
	defer unlock()

	now := s.now()
	userID := actor.UserID
	report := &models.Report{
		UserID:      &userID,
		ZoneID:      in.ZoneID,
		FillLevel:   in.FillLevel,
		Priority:    in.Priority,
		Description: strings.TrimSpace(in.Description),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      models.ReportStatusPending,
		CreatedAt:   now,
	}
	report.SetPhotoRefs(in.Photos)
	if err := report.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	err := s.tx.WithinTransaction(func(repos *repository.Repositories) error {
		zone, err := repos.Zone.GetByID(in.ZoneID)
		if err != nil {
			return err
		}
		if !zone.Active {
			return apperrors.Validation("zone %d is not active", zone.ID)
		}
		report.DistrictID = zone.DistrictID
		report.EstimatedPoints = s.rewards.SubmissionPoints(report)
		if err := repos.Report.Create(report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		applied, err := zonestate.ApplyReportedFill(zone, in.FillLevel, now)
		if err != nil {
			return err
		}
		if applied {
			if _, err := repos.Zone.UpdateFill(zone); err != nil {
				return fmt.Errorf("failed to update zone fill: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[Reports] Report %d submitted for zone %d by user %d", report.ID, report.ZoneID, actor.UserID)
	return report, nil
}

// Edit lets the owner change a pending report.
func (s *Service) Edit(actor Actor, reportID uint, in EditInput) (*models.Report, error) {
	unlock := s.locks.Lock(keylock.Key("report", reportID))
	defer unlock()

	report, err := s.repos.Report.GetByID(reportID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnerMutation(actor, report); err != nil {
		return nil, err
	}

	updated := *report
	if in.Description != nil {
		updated.Description = strings.TrimSpace(*in.Description)
	}
	if in.FillLevel != nil {
		updated.FillLevel = *in.FillLevel
	}
	if in.Priority != "" {
		updated.Priority = in.Priority
	}
	photos := append(report.PhotoRefs(), in.AddPhotos...)
	if err := validatePayload(updated.Description, photos, updated.FillLevel); err != nil {
		return nil, err
	}
	updated.SetPhotoRefs(photos)
	if err := updated.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	zoneUnlock := s.locks.Lock(keylock.Key("zone", report.ZoneID))
	defer zoneUnlock()

	now := s.now()
	err = s.tx.WithinTransaction(func(repos *repository.Repositories) error {
		if err := repos.Report.UpdateWithVersion(&updated); err != nil {
			return err
		}
		if in.FillLevel == nil {
			return nil
		}
		zone, err := repos.Zone.GetByID(updated.ZoneID)
		if err != nil {
			return err
		}
		applied, err := zonestate.ApplyReportedFill(zone, updated.FillLevel, now)
		if err != nil {
			return err
		}
		if applied {
			_, err = repos.Zone.UpdateFill(zone)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a pending report on behalf of its owner.
func (s *Service) Delete(actor Actor, reportID uint) error {
	unlock := s.locks.Lock(keylock.Key("report", reportID))
	defer unlock()

	report, err := s.repos.Report.GetByID(reportID)
	if err != nil {
		return err
	}
	if err := checkOwnerMutation(actor, report); err != nil {
		return err
	}
	if err := s.repos.Report.Delete(report); err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}
	log.Infof("[Reports] Report %d deleted by owner %d", report.ID, actor.UserID)
	return nil
}

// Get returns a report visible to the actor.
func (s *Service) Get(actor Actor, reportID uint) (*models.Report, error) {
	report, err := s.repos.Report.GetByID(reportID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !report.IsOwnedBy(actor.UserID) {
		return nil, &apperrors.ForbiddenTransitionError{Entity: "report", ID: reportID, Rule: "only the owner may view this report"}
	}
	return report, nil
}

// ListMine returns the actor's own reports.
func (s *Service) ListMine(actor Actor, offset, limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repos.Report.ListByUserID(actor.UserID, offset, limit)
}

// Verify accepts a pending report and credits points to its owner. points
// overrides the suggested award when not nil.
func (s *Service) Verify(actor Actor, reportID uint, points *int, comment string) (*models.Report, error) {
	return s.transition(actor, reportID, ActionVerify, comment, points)
}

// Reject closes a pending report. The comment is mandatory.
func (s *Service) Reject(actor Actor, reportID uint, comment string) (*models.Report, error) {
	return s.transition(actor, reportID, ActionReject, comment, nil)
}

// Resolve closes a pending or verified report.
func (s *Service) Resolve(actor Actor, reportID uint, comment string) (*models.Report, error) {
	return s.transition(actor, reportID, ActionResolve, comment, nil)
}

func (s *Service) transition(actor Actor, reportID uint, action Action, comment string, override *int) (report *models.Report, err error) {
	defer func() { metrics.RecordTransition(string(action), err) }()

	if !actor.IsAdmin() {
		return nil, &apperrors.ForbiddenTransitionError{Entity: "report", ID: reportID, Rule: "only administrators may review reports"}
	}

	unlock := s.locks.Lock(keylock.Key("report", reportID))
	defer unlock()

	report, err = s.repos.Report.GetByID(reportID)
	if err != nil {
		return nil, err
	}

	var points int
	if action == ActionVerify {
		points, err = s.rewards.ResolveAward(report, override)
		if err != nil {
			return nil, err
		}
	}

	updated := *report
	if err = Apply(&updated, action, Decision{Comment: comment, Points: points}, s.now()); err != nil {
		return nil, err
	}
	reviewer := actor.UserID
	updated.ReviewedByID = &reviewer

	var levelUp bool
	err = s.tx.WithinTransaction(func(repos *repository.Repositories) error {
		if err := repos.Report.UpdateWithVersion(&updated); err != nil {
			return err
		}
		if action != ActionVerify || points == 0 {
			return nil
		}
		if updated.UserID == nil {
			log.Infof("[Reports] Report %d has no owner, no points awarded", updated.ID)
			return nil
		}
		var err error
		levelUp, err = s.award(repos, *updated.UserID, points)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Reports] Report %d %s -> %s by admin %d", updated.ID, report.Status, updated.Status, actor.UserID)
	if action == ActionVerify {
		metrics.RecordPointsAwarded(points)
	}
	s.notify(&updated, action, points, levelUp)
	return &updated, nil
}

// award credits points with an atomic increment and raises the level when
// the new total warrants it. A missing user is a logged no-op.
func (s *Service) award(repos *repository.Repositories, userID uint, points int) (bool, error) {
	user, err := repos.User.AddPoints(userID, points)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.Warnf("[Reports] Cannot award %d points: user %d does not exist", points, userID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to add points: %w", err)
	}
	level := s.rewards.LevelFor(user.Points)
	if level <= user.Level {
		return false, nil
	}
	if err := repos.User.RaiseLevel(userID, level); err != nil {
		return false, fmt.Errorf("failed to raise level: %w", err)
	}
	log.Infof("[Reports] User %d reached level %d", userID, level)
	return true, nil
}

func (s *Service) notify(report *models.Report, action Action, points int, levelUp bool) {
	if s.notifier == nil || report.UserID == nil {
		return
	}
	kind := map[Action]string{
		ActionVerify:  models.NotificationReportVerified,
		ActionReject:  models.NotificationReportRejected,
		ActionResolve: models.NotificationReportResolved,
	}[action]
	if err := s.notifier.NotifyReport(*report.UserID, report.ID, kind, points); err != nil {
		log.Errorf("[Reports] Failed to enqueue notification for report %d: %v", report.ID, err)
	}
	if levelUp {
		if err := s.notifier.NotifyReport(*report.UserID, report.ID, models.NotificationLevelUp, points); err != nil {
			log.Errorf("[Reports] Failed to enqueue level notification for user %d: %v", *report.UserID, err)
		}
	}
}

// AnonymizeUser deletes a user and detaches their reports, keeping zone and
// priority data for analytics.
func (s *Service) AnonymizeUser(actor Actor, userID uint) (int64, error) {
	if !actor.IsAdmin() {
		return 0, &apperrors.ForbiddenTransitionError{Rule: "only administrators may delete users"}
	}
	unlock := s.locks.Lock(keylock.Key("user", userID))
	defer unlock()

	var affected int64
	err := s.tx.WithinTransaction(func(repos *repository.Repositories) error {
		if _, err := repos.User.GetByID(userID); err != nil {
			return err
		}
		n, err := repos.Report.AnonymizeByUserID(userID, models.AnonymizedDescription)
		if err != nil {
			return fmt.Errorf("failed to anonymize reports: %w", err)
		}
		affected = n
		return repos.User.Delete(userID)
	})
	if err != nil {
		return 0, err
	}
	log.Infof("[Reports] User %d deleted, %d reports anonymized", userID, affected)
	return affected, nil
}

func checkOwnerMutation(actor Actor, report *models.Report) error {
	if !report.IsOwnedBy(actor.UserID) {
		return &apperrors.ForbiddenTransitionError{Entity: "report", ID: report.ID, Rule: "only the owner may change a report"}
	}
	if !IsEditable(report) {
		return &apperrors.ForbiddenTransitionError{Entity: "report", ID: report.ID, Rule: "only pending reports may be changed"}
	}
	return nil
}

func validatePayload(description string, photos []string, fillLevel float64) error {
	if len([]rune(strings.TrimSpace(description))) > models.MaxReportDescription {
		return apperrors.Validation("description must not exceed %d characters", models.MaxReportDescription)
	}
	if len(photos) > models.MaxReportPhotos {
		return apperrors.Validation("a report carries at most %d photos", models.MaxReportPhotos)
	}
	if err := photoref.ValidateAll(photos); err != nil {
		return apperrors.Validation("%v", err)
	}
	if fillLevel < 0 || fillLevel > 100 {
		return apperrors.Validation("fill level must be between 0 and 100")
	}
	return nil
}
