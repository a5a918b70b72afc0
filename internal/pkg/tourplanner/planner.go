package tourplanner

import (
	"fmt"
	"math"
	"sort"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

// Rank returns a copy of zones ordered by declared priority (high first),
// then fill percentage descending, then ID ascending.
func Rank(zones []models.Zone) ([]models.Zone, error) {
	pct := make(map[uint]float64, len(zones))
	for i := range zones {
		p, err := zonestate.FillPercentage(&zones[i])
		if err != nil {
			return nil, err
		}
		pct[zones[i].ID] = p
	}

	ranked := make([]models.Zone, len(zones))
	copy(ranked, zones)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
			return ra > rb
		}
		if pct[a.ID] != pct[b.ID] {
			return pct[a.ID] > pct[b.ID]
		}
		return a.ID < b.ID
	})
	return ranked, nil
}

// CheckCapacity walks zones in the given order and fails on the first zone
// whose fill pushes the running total over capacity.
func CheckCapacity(zones []models.Zone, capacity int) error {
	total := 0
	for _, z := range zones {
		total += z.CurrentFill
		if total > capacity {
			return &apperrors.CapacityExceededError{
				ZoneID:          z.ID,
				ZoneName:        z.Name,
				Capacity:        capacity,
				AccumulatedFill: total,
			}
		}
	}
	return nil
}

// FitToCapacity keeps zones in order while they fit and returns the ones
// that had to be left out.
func FitToCapacity(zones []models.Zone, capacity int) (kept, skipped []models.Zone) {
	total := 0
	for _, z := range zones {
		if total+z.CurrentFill > capacity {
			skipped = append(skipped, z)
			continue
		}
		total += z.CurrentFill
		kept = append(kept, z)
	}
	return kept, skipped
}

// TotalFill sums the current fill of zones.
func TotalFill(zones []models.Zone) int {
	total := 0
	for _, z := range zones {
		total += z.CurrentFill
	}
	return total
}

const minutesPerDay = 24 * 60

// TimeOfDay is a wall clock time in minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, apperrors.Validation("invalid time %q, expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, apperrors.Validation("invalid time %q, expected HH:MM", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// EstimatedEndTime adds durationHours to start and wraps around midnight.
func EstimatedEndTime(start TimeOfDay, durationHours float64) TimeOfDay {
	minutes := int(start) + int(math.Round(durationHours*60))
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return TimeOfDay(minutes)
}
