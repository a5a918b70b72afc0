package planfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

const draft = `
vehicle: {plate: CC-1, capacity: 1000}
start: "22:30"
duration_hours: 2.5
zones:
  - {id: 1, name: Park, capacity: 500, current_fill: 300, priority: low}
  - {id: 2, name: Market, capacity: 500, current_fill: 400, priority: high}
  - {id: 3, name: School, capacity: 500, current_fill: 450, priority: medium}
`

func TestPlan_RanksAndChecksCapacity(t *testing.T) {
	f, err := Parse([]byte(draft))
	require.NoError(t, err)

	_, err = f.Plan(false)
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))
	var ce *apperrors.CapacityExceededError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, uint(1), ce.ZoneID)
	assert.Equal(t, 1150, ce.AccumulatedFill)
}

func TestPlan_Fit(t *testing.T) {
	f, err := Parse([]byte(draft))
	require.NoError(t, err)

	res, err := f.Plan(true)
	require.NoError(t, err)
	require.Len(t, res.Ranked, 2)
	assert.Equal(t, uint(2), res.Ranked[0].Zone.ID)
	assert.Equal(t, uint(3), res.Ranked[1].Zone.ID)
	assert.Equal(t, []uint{1}, res.Skipped)
	assert.Equal(t, 850, res.TotalFill)
	assert.Equal(t, "22:30", res.Start)
	assert.Equal(t, "01:00", res.End)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"no capacity": "vehicle: {capacity: 0}\nzones: [{id: 1, capacity: 10}]",
		"no zones":    "vehicle: {capacity: 10}",
		"duplicate":   "vehicle: {capacity: 10}\nzones: [{id: 1, capacity: 10}, {id: 1, capacity: 10}]",
		"bad yaml":    "vehicle: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestPlan_InvalidZone(t *testing.T) {
	f, err := Parse([]byte("vehicle: {capacity: 10}\nzones: [{id: 1, capacity: 5, current_fill: 9}]"))
	require.NoError(t, err)
	_, err = f.Plan(true)
	var ie *apperrors.InvalidZoneError
	assert.ErrorAs(t, err, &ie)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(draft), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CC-1", f.Vehicle.Plate)
	assert.Len(t, f.Zones, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
