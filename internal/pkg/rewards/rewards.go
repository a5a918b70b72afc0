package rewards

import (
	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/config"
)

// Engine computes points for reports and keeps user levels consistent.
type Engine struct {
	verify         config.VerificationSchedule
	submit         config.SubmissionSchedule
	maxOverride    int
	pointsPerLevel int
}

// NewEngine creates a reward engine from the configured schedules.
func NewEngine(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	perLevel := cfg.PointsPerLevel
	if perLevel <= 0 {
		perLevel = 100
	}
	return &Engine{
		verify:         cfg.Verification,
		submit:         cfg.Submission,
		maxOverride:    cfg.MaxOverride,
		pointsPerLevel: perLevel,
	}
}

// SuggestedPoints is the default award for verifying the report.
func (e *Engine) SuggestedPoints(report *models.Report) int {
	total := e.verify.Base
	switch report.Priority {
	case models.PriorityHigh:
		total += e.verify.HighPriority
	case models.PriorityMedium:
		total += e.verify.MediumPriority
	case models.PriorityLow:
		total += e.verify.LowPriority
	}
	if len(report.PhotoRefs()) > 0 {
		total += e.verify.PhotoBonus
	}
	return total
}

// SubmissionPoints is the estimate shown when the report is submitted.
// It is not credited to the user.
func (e *Engine) SubmissionPoints(report *models.Report) int {
	total := e.submit.Base
	if report.Priority == models.PriorityHigh {
		total += e.submit.HighPriority
	}
	return total
}

// ResolveAward returns the override when given, otherwise the suggested total.
func (e *Engine) ResolveAward(report *models.Report, override *int) (int, error) {
	if override == nil {
		return e.SuggestedPoints(report), nil
	}
	if *override < 0 || *override > e.maxOverride {
		return 0, apperrors.Validation("points must be between 0 and %d", e.maxOverride)
	}
	return *override, nil
}

// LevelFor returns floor(points / pointsPerLevel) + 1.
func (e *Engine) LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/e.pointsPerLevel + 1
}

// ApplyPoints adds amount to the user and raises the level if the new total
// warrants it. The level never decreases. It returns true when the level changed.
func (e *Engine) ApplyPoints(user *models.User, amount int) bool {
	user.Points += amount
	if user.Points < 0 {
		user.Points = 0
	}
	if user.Level < 1 {
		user.Level = 1
	}
	if lvl := e.LevelFor(user.Points); lvl > user.Level {
		user.Level = lvl
		return true
	}
	return false
}
