package zonestate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

func TestFillPercentage_UrgentZone(t *testing.T) {
	zone := &models.Zone{ID: 1, Capacity: 1000, CurrentFill: 950}

	pct, err := FillPercentage(zone)
	require.NoError(t, err)
	assert.Equal(t, 95.0, pct)

	urgent, err := IsUrgent(zone)
	require.NoError(t, err)
	assert.True(t, urgent)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		fill int
		want Urgency
	}{
		{0, UrgencyNominal},
		{70, UrgencyNominal},
		{71, UrgencyWarning},
		{90, UrgencyWarning},
		{91, UrgencyCritical},
		{100, UrgencyCritical},
	}
	for _, tt := range tests {
		zone := &models.Zone{Capacity: 100, CurrentFill: tt.fill, Priority: models.PriorityLow}
		got, err := Classify(zone)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "fill %d", tt.fill)
		assert.Equal(t, models.PriorityLow, zone.Priority, "classification must not touch the declared priority")
	}
}

func TestInvalidZone(t *testing.T) {
	var ie *apperrors.InvalidZoneError

	_, err := FillPercentage(&models.Zone{ID: 4, Capacity: 0})
	assert.ErrorAs(t, err, &ie)
	assert.Equal(t, uint(4), ie.ZoneID)

	assert.ErrorAs(t, Check(&models.Zone{Capacity: 10, CurrentFill: 11}), &ie)
	assert.ErrorAs(t, Check(&models.Zone{Capacity: 10, CurrentFill: -1}), &ie)
	assert.NoError(t, Check(&models.Zone{Capacity: 10, CurrentFill: 10}))

	_, err = Describe(&models.Zone{Capacity: -5})
	assert.Error(t, err)
}

func TestApplyEmptying_Idempotent(t *testing.T) {
	at := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	zone := &models.Zone{Capacity: 500, CurrentFill: 420}

	require.True(t, ApplyEmptying(zone, at))
	first := *zone
	require.True(t, ApplyEmptying(zone, at))

	assert.Equal(t, 0, zone.CurrentFill)
	assert.Equal(t, first.CurrentFill, zone.CurrentFill)
	assert.Equal(t, first.FillUpdatedAt, zone.FillUpdatedAt)
	require.NotNil(t, zone.LastEmptiedAt)
	assert.True(t, zone.LastEmptiedAt.Equal(at))
}

func TestApplyEmptying_OlderThanLastWrite(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	zone := &models.Zone{Capacity: 500, CurrentFill: 300, FillUpdatedAt: now}

	assert.False(t, ApplyEmptying(zone, now.Add(-time.Hour)))
	assert.Equal(t, 300, zone.CurrentFill)
	assert.Nil(t, zone.LastEmptiedAt)
}

func TestApplyReportedFill(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	zone := &models.Zone{Capacity: 240, CurrentFill: 10, FillUpdatedAt: now.Add(-time.Hour)}

	applied, err := ApplyReportedFill(zone, 75, now)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 180, zone.CurrentFill)

	applied, err = ApplyReportedFill(zone, 10, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, applied, "an older report must not overwrite a newer fill")
	assert.Equal(t, 180, zone.CurrentFill)

	applied, err = ApplyReportedFill(zone, 150, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 240, zone.CurrentFill, "levels are clamped to 100%")
}

func TestDescribe(t *testing.T) {
	snap, err := Describe(&models.Zone{Capacity: 200, CurrentFill: 190, Priority: models.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, 95.0, snap.FillPercentage)
	assert.Equal(t, UrgencyCritical, snap.Urgency)
	assert.True(t, snap.Urgent)
	assert.Equal(t, models.PriorityLow, snap.Zone.Priority)
}
