package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/config"
)

func report(priority string, photos ...string) *models.Report {
	r := &models.Report{Priority: priority}
	r.SetPhotoRefs(photos)
	return r
}

func TestSuggestedPoints(t *testing.T) {
	e := NewEngine(nil)

	assert.Equal(t, 30, e.SuggestedPoints(report(models.PriorityHigh, "a.jpg", "b.jpg")))
	assert.Equal(t, 25, e.SuggestedPoints(report(models.PriorityHigh)))
	assert.Equal(t, 20, e.SuggestedPoints(report(models.PriorityMedium)))
	assert.Equal(t, 20, e.SuggestedPoints(report(models.PriorityLow, "a.jpg")))
}

func TestSubmissionPoints_SeparateSchedule(t *testing.T) {
	e := NewEngine(nil)
	high := report(models.PriorityHigh, "a.jpg")

	assert.Equal(t, 15, e.SubmissionPoints(high))
	assert.Equal(t, 10, e.SubmissionPoints(report(models.PriorityLow)))
	assert.NotEqual(t, e.SuggestedPoints(high), e.SubmissionPoints(high))
}

func TestResolveAward(t *testing.T) {
	e := NewEngine(nil)
	r := report(models.PriorityMedium)

	got, err := e.ResolveAward(r, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	for _, v := range []int{0, 55, 100} {
		v := v
		got, err := e.ResolveAward(r, &v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []int{-1, 101} {
		v := v
		_, err := e.ResolveAward(r, &v)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestApplyPoints_LevelUp(t *testing.T) {
	e := NewEngine(nil)
	user := &models.User{Points: 95, Level: 1}

	assert.True(t, e.ApplyPoints(user, 10))
	assert.Equal(t, 105, user.Points)
	assert.Equal(t, 2, user.Level)

	assert.False(t, e.ApplyPoints(user, 5))
	assert.Equal(t, 2, user.Level)
}

func TestApplyPoints_LevelNeverDecreases(t *testing.T) {
	e := NewEngine(nil)
	user := &models.User{Points: 20, Level: 4}

	assert.False(t, e.ApplyPoints(user, 10))
	assert.Equal(t, 4, user.Level)
}

func TestLevelFor(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, 1, e.LevelFor(0))
	assert.Equal(t, 1, e.LevelFor(99))
	assert.Equal(t, 2, e.LevelFor(100))
	assert.Equal(t, 6, e.LevelFor(512))
	assert.Equal(t, 1, e.LevelFor(-3))
}

func TestNewEngine_CustomSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.Verification.Base = 50
	cfg.PointsPerLevel = 0
	e := NewEngine(cfg)

	assert.Equal(t, 60, e.SuggestedPoints(report(models.PriorityMedium)))
	assert.Equal(t, 2, e.LevelFor(100), "a non-positive level step falls back to 100")
}
