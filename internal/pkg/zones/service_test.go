package zones

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

var (
	admin   = lifecycle.Actor{UserID: 1, Role: models.ROLE_ADMIN}
	citizen = lifecycle.Actor{UserID: 2, Role: models.ROLE_CITIZEN}
)

func newService() (*Service, *repository.Repositories) {
	repos := repository.NewMemoryStore().Repositories()
	return NewService(repos, nil), repos
}

func TestCreate(t *testing.T) {
	svc, _ := newService()

	zone, err := svc.Create(admin, CreateInput{Name: "Old Town", DistrictID: 4, Capacity: 400, CurrentFill: 380})
	require.NoError(t, err)
	assert.True(t, zone.Active)
	assert.Equal(t, models.ZoneTypeResidential, zone.ZoneType)
	assert.Equal(t, models.PriorityMedium, zone.Priority)
	assert.False(t, zone.FillUpdatedAt.IsZero())

	snap, err := svc.Get(zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, snap.FillPercentage)
	assert.True(t, snap.Urgent)
	assert.Equal(t, zonestate.UrgencyCritical, snap.Urgency)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(citizen, CreateInput{Name: "Old Town", DistrictID: 4, Capacity: 400})
	var fe *apperrors.ForbiddenTransitionError
	assert.ErrorAs(t, err, &fe)

	cases := map[string]CreateInput{
		"zero capacity":    {Name: "Old Town", DistrictID: 4},
		"overfilled":       {Name: "Old Town", DistrictID: 4, Capacity: 100, CurrentFill: 101},
		"negative fill":    {Name: "Old Town", DistrictID: 4, Capacity: 100, CurrentFill: -1},
		"missing name":     {DistrictID: 4, Capacity: 100},
		"unknown type":     {Name: "Old Town", DistrictID: 4, Capacity: 100, ZoneType: "harbour"},
		"unknown priority": {Name: "Old Town", DistrictID: 4, Capacity: 100, Priority: "urgent"},
		"bad latitude":     {Name: "Old Town", DistrictID: 4, Capacity: 100, Latitude: 91},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(admin, in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestSetPriorityAndDeactivate(t *testing.T) {
	svc, repos := newService()
	zone, err := svc.Create(admin, CreateInput{Name: "Harbour", DistrictID: 1, Capacity: 1000, CurrentFill: 100})
	require.NoError(t, err)

	_, err = svc.SetPriority(admin, zone.ID, "critical")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err := svc.SetPriority(admin, zone.ID, models.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, 100, updated.CurrentFill)

	var fe *apperrors.ForbiddenTransitionError
	_, err = svc.Deactivate(citizen, zone.ID)
	assert.ErrorAs(t, err, &fe)

	_, err = svc.Deactivate(admin, zone.ID)
	require.NoError(t, err)
	list, err := svc.ListActive()
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := repos.Zone.GetByID(zone.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, err = svc.SetPriority(admin, 999, models.PriorityLow)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListActive_SkipsBrokenZones(t *testing.T) {
	svc, repos := newService()
	_, err := svc.Create(admin, CreateInput{Name: "Harbour", DistrictID: 1, Capacity: 1000})
	require.NoError(t, err)
	require.NoError(t, repos.Zone.Create(&models.Zone{Name: "Broken", DistrictID: 1, Active: true}))

	list, err := svc.ListActive()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Harbour", list[0].Zone.Name)
}
