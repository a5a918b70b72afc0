package zonestate

import (
	"math"
	"time"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

// Urgency is the fill-derived classification of a zone. It is independent of
// the zone's declared priority.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyNominal  Urgency = "nominal"
)

const (
	CriticalThreshold = 90.0
	WarningThreshold  = 70.0
)

// Check validates the capacity/fill invariant of a zone.
func Check(zone *models.Zone) error {
	if zone.Capacity <= 0 {
		return &apperrors.InvalidZoneError{ZoneID: zone.ID, Reason: "capacity must be greater than zero"}
	}
	if zone.CurrentFill < 0 || zone.CurrentFill > zone.Capacity {
		return &apperrors.InvalidZoneError{ZoneID: zone.ID, Reason: "current fill must be within [0, capacity]"}
	}
	return nil
}

// FillPercentage returns current_fill / capacity * 100 clamped to [0,100].
func FillPercentage(zone *models.Zone) (float64, error) {
	if zone.Capacity <= 0 {
		return 0, &apperrors.InvalidZoneError{ZoneID: zone.ID, Reason: "capacity must be greater than zero"}
	}
	pct := float64(zone.CurrentFill) / float64(zone.Capacity) * 100
	return math.Max(0, math.Min(100, pct)), nil
}

// IsUrgent reports whether the zone is more than 90% full.
func IsUrgent(zone *models.Zone) (bool, error) {
	pct, err := FillPercentage(zone)
	if err != nil {
		return false, err
	}
	return pct > CriticalThreshold, nil
}

// Classify derives the urgency of a zone. It never touches zone.Priority.
func Classify(zone *models.Zone) (Urgency, error) {
	pct, err := FillPercentage(zone)
	if err != nil {
		return "", err
	}
	switch {
	case pct > CriticalThreshold:
		return UrgencyCritical, nil
	case pct > WarningThreshold:
		return UrgencyWarning, nil
	default:
		return UrgencyNominal, nil
	}
}

// ApplyEmptying resets the fill after a collection at the given time.
// Applying it twice with the same timestamp yields the same state. An emptying
// older than the last fill write is ignored (last writer wins) and false is
// returned.
func ApplyEmptying(zone *models.Zone, at time.Time) bool {
	if at.Before(zone.FillUpdatedAt) {
		return false
	}
	zone.CurrentFill = 0
	emptied := at
	zone.LastEmptiedAt = &emptied
	zone.FillUpdatedAt = at
	return true
}

// ApplyReportedFill moves the zone fill to the level estimated by a report.
// The write is skipped when a newer fill write already happened.
func ApplyReportedFill(zone *models.Zone, fillLevel float64, at time.Time) (bool, error) {
	if err := Check(zone); err != nil {
		return false, err
	}
	if at.Before(zone.FillUpdatedAt) {
		return false, nil
	}
	level := math.Max(0, math.Min(100, fillLevel))
	zone.CurrentFill = int(math.Round(float64(zone.Capacity) * level / 100))
	zone.FillUpdatedAt = at
	return true, nil
}

// Snapshot is the read model exposed for a zone: declared priority and measured
// urgency side by side.
type Snapshot struct {
	Zone           *models.Zone `json:"zone"`
	FillPercentage float64      `json:"fill_percentage"`
	Urgency        Urgency      `json:"urgency"`
	Urgent         bool         `json:"urgent"`
}

// Describe builds a Snapshot for a zone.
func Describe(zone *models.Zone) (Snapshot, error) {
	pct, err := FillPercentage(zone)
	if err != nil {
		return Snapshot{}, err
	}
	urgency, _ := Classify(zone)
	return Snapshot{
		Zone:           zone,
		FillPercentage: pct,
		Urgency:        urgency,
		Urgent:         pct > CriticalThreshold,
	}, nil
}
