package tourplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

func zone(id uint, priority string, fill, capacity int) models.Zone {
	return models.Zone{ID: id, Name: "zone", Priority: priority, CurrentFill: fill, Capacity: capacity}
}

func ids(zones []models.Zone) []uint {
	out := make([]uint, len(zones))
	for i, z := range zones {
		out[i] = z.ID
	}
	return out
}

func TestRank(t *testing.T) {
	zones := []models.Zone{
		zone(1, models.PriorityLow, 990, 1000),
		zone(2, models.PriorityHigh, 100, 1000),
		zone(3, models.PriorityMedium, 500, 1000),
		zone(4, models.PriorityHigh, 800, 1000),
		zone(5, models.PriorityMedium, 50, 100),
	}

	ranked, err := Rank(zones)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 2, 3, 5, 1}, ids(ranked))
	assert.Equal(t, uint(1), zones[0].ID, "input is not reordered")
}

func TestRank_TiesBreakOnID(t *testing.T) {
	ranked, err := Rank([]models.Zone{
		zone(9, models.PriorityHigh, 50, 100),
		zone(3, models.PriorityHigh, 500, 1000),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 9}, ids(ranked))
}

func TestRank_InvalidZone(t *testing.T) {
	_, err := Rank([]models.Zone{zone(1, models.PriorityHigh, 0, 0)})
	var ie *apperrors.InvalidZoneError
	assert.ErrorAs(t, err, &ie)
}

func TestCheckCapacity(t *testing.T) {
	zones := []models.Zone{
		zone(1, models.PriorityHigh, 600, 1000),
		zone(2, models.PriorityHigh, 500, 1000),
	}

	err := CheckCapacity(zones, 1000)
	var ce *apperrors.CapacityExceededError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint(2), ce.ZoneID)
	assert.Equal(t, 1100, ce.AccumulatedFill)
	assert.Equal(t, 1000, ce.Capacity)

	assert.NoError(t, CheckCapacity(zones, 1100))
	assert.NoError(t, CheckCapacity(nil, 0))
}

func TestFitToCapacity(t *testing.T) {
	zones := []models.Zone{
		zone(1, models.PriorityHigh, 700, 1000),
		zone(2, models.PriorityHigh, 400, 1000),
		zone(3, models.PriorityMedium, 300, 1000),
	}

	kept, skipped := FitToCapacity(zones, 1000)
	assert.Equal(t, []uint{1, 3}, ids(kept))
	assert.Equal(t, []uint{2}, ids(skipped))
	assert.Equal(t, 1000, TotalFill(kept))
}

func TestTimeOfDay(t *testing.T) {
	start, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", start.String())
	assert.Equal(t, "12:00", EstimatedEndTime(start, 3.5).String())

	late, err := ParseTimeOfDay("22:00")
	require.NoError(t, err)
	assert.Equal(t, "01:00", EstimatedEndTime(late, 3).String())
	assert.Equal(t, "22:00", EstimatedEndTime(late, 24).String())

	for _, bad := range []string{"", "24:00", "12:60", "noon", "-1:10"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, bad)
	}
}
