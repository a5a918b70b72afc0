package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

func TestNext_TransitionTable(t *testing.T) {
	tests := []struct {
		from   string
		action Action
		to     string
		legal  bool
	}{
		{models.ReportStatusPending, ActionVerify, models.ReportStatusVerified, true},
		{models.ReportStatusPending, ActionReject, models.ReportStatusRejected, true},
		{models.ReportStatusPending, ActionResolve, models.ReportStatusResolved, true},
		{models.ReportStatusVerified, ActionResolve, models.ReportStatusResolved, true},
		{models.ReportStatusVerified, ActionVerify, "", false},
		{models.ReportStatusVerified, ActionReject, "", false},
		{models.ReportStatusRejected, ActionVerify, "", false},
		{models.ReportStatusRejected, ActionResolve, "", false},
		{models.ReportStatusResolved, ActionResolve, "", false},
		{models.ReportStatusResolved, ActionReject, "", false},
		{models.ReportStatusPending, Action("archive"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"/"+string(tt.action), func(t *testing.T) {
			to, err := Next(7, tt.from, tt.action)
			if !tt.legal {
				var ie *apperrors.IllegalTransitionError
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, uint(7), ie.ID)
				assert.Equal(t, tt.from, ie.From)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestApply_RejectNeedsComment(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	report := &models.Report{ID: 1, Status: models.ReportStatusPending}

	err := Apply(report, ActionReject, Decision{Comment: "   "}, now)
	var ie *apperrors.IllegalTransitionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Empty(t, report.AdminComment)

	require.NoError(t, Apply(report, ActionReject, Decision{Comment: "spam"}, now))
	assert.Equal(t, models.ReportStatusRejected, report.Status)
	assert.Equal(t, "spam", report.AdminComment)
}

func TestApply_Timestamps(t *testing.T) {
	verifiedAt := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	resolvedAt := verifiedAt.Add(2 * time.Hour)
	report := &models.Report{ID: 2, Status: models.ReportStatusPending}

	require.NoError(t, Apply(report, ActionVerify, Decision{Points: 25}, verifiedAt))
	assert.Equal(t, 25, report.PointsAwarded)
	require.NotNil(t, report.VerifiedAt)
	assert.Nil(t, report.ResolvedAt)

	require.NoError(t, Apply(report, ActionResolve, Decision{}, resolvedAt))
	assert.True(t, report.VerifiedAt.Equal(verifiedAt), "resolve keeps the verification time")
	require.NotNil(t, report.ResolvedAt)
	assert.True(t, report.ResolvedAt.Equal(resolvedAt))

	direct := &models.Report{ID: 3, Status: models.ReportStatusPending}
	require.NoError(t, Apply(direct, ActionResolve, Decision{}, resolvedAt))
	require.NotNil(t, direct.VerifiedAt)
	assert.True(t, direct.VerifiedAt.Equal(resolvedAt))
}

func TestIsEditable(t *testing.T) {
	assert.True(t, IsEditable(&models.Report{Status: models.ReportStatusPending}))
	assert.False(t, IsEditable(&models.Report{Status: models.ReportStatusVerified}))
	assert.False(t, IsEditable(&models.Report{Status: models.ReportStatusRejected}))
	assert.False(t, IsEditable(&models.Report{Status: models.ReportStatusResolved}))
}
