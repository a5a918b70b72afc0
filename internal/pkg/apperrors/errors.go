package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a zone, report, user, team, vehicle or tour does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input (description too long, too many photos, ...).
	ErrValidation = errors.New("validation failed")
)

// InvalidZoneError reports a zone whose capacity or fill breaks 0 <= fill <= capacity, capacity > 0.
type InvalidZoneError struct {
	ZoneID uint
	Reason string
}

func (e *InvalidZoneError) Error() string {
	return fmt.Sprintf("invalid zone %d: %s", e.ZoneID, e.Reason)
}

// IllegalTransitionError is returned when a state machine guard rejects an action.
type IllegalTransitionError struct {
	Entity string
	ID     uint
	From   string
	Action string
	Rule   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s %d (%s) cannot %s: %s", e.Entity, e.ID, e.From, e.Action, e.Rule)
}

// ForbiddenTransitionError covers ownership, role and status mismatches on user-driven changes.
type ForbiddenTransitionError struct {
	Entity string
	ID     uint
	Rule   string
}

func (e *ForbiddenTransitionError) Error() string {
	if e.Entity == "" {
		return "forbidden: " + e.Rule
	}
	return fmt.Sprintf("forbidden on %s %d: %s", e.Entity, e.ID, e.Rule)
}

// CapacityExceededError names the first zone (in ranked order) that pushes the
// accumulated fill over the vehicle capacity.
type CapacityExceededError struct {
	ZoneID          uint
	ZoneName        string
	Capacity        int
	AccumulatedFill int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("vehicle capacity %dl exceeded at zone %d (%s): total would be %dl",
		e.Capacity, e.ZoneID, e.ZoneName, e.AccumulatedFill)
}

// ScheduleConflictError is returned when a zone already belongs to a
// non-cancelled tour on the requested date.
type ScheduleConflictError struct {
	ZoneID uint
	Date   string
	TourID uint
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("zone %d is already scheduled on %s", e.ZoneID, e.Date)
}

// ConflictError is returned when a write was based on a stale version of a record.
type ConflictError struct {
	Entity string
	ID     uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s %d, reload and retry", e.Entity, e.ID)
}

// Validation wraps ErrValidation with a human readable message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
