package statistics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
)

type mapStore struct {
	data map[string]string
	sets int
	fail bool
}

func (m *mapStore) Get(key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", errors.New("miss")
}

func (m *mapStore) Set(key string, value interface{}, _ time.Duration) error {
	if m.fail {
		return errors.New("down")
	}
	m.sets++
	m.data[key] = value.(string)
	return nil
}

func seed(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	repos := store.Repositories()
	require.NoError(t, repos.Zone.Create(&models.Zone{Name: "Full", Capacity: 100, CurrentFill: 95, Active: true, Priority: models.PriorityHigh}))
	require.NoError(t, repos.Zone.Create(&models.Zone{Name: "Warm", Capacity: 100, CurrentFill: 75, Active: true, Priority: models.PriorityLow}))
	require.NoError(t, repos.Zone.Create(&models.Zone{Name: "Off", Capacity: 100, CurrentFill: 99, Active: false}))
	require.NoError(t, repos.Report.Create(&models.Report{ZoneID: 1, Status: models.ReportStatusPending}))
	require.NoError(t, repos.Report.Create(&models.Report{ZoneID: 1, Status: models.ReportStatusVerified}))
	require.NoError(t, repos.User.Create(&models.User{Name: "Ann", Points: 40, Role: models.ROLE_CITIZEN}))
	return store
}

func TestCompute(t *testing.T) {
	svc := NewService(seed(t).Repositories(), &mapStore{data: map[string]string{}})

	d, err := svc.Compute()
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.ActiveZones)
	assert.Equal(t, int64(1), d.UrgentZones)
	assert.Equal(t, int64(1), d.WarningZones)
	assert.Equal(t, int64(40), d.TotalPoints)
	assert.Equal(t, int64(1), d.ReportsByStatus[models.ReportStatusPending])
	assert.Equal(t, int64(0), d.ReportsByStatus[models.ReportStatusResolved])
}

func TestGet_UsesCacheAfterFirstCall(t *testing.T) {
	cacheStore := &mapStore{data: map[string]string{}}
	svc := NewService(seed(t).Repositories(), cacheStore)

	first, err := svc.Get()
	require.NoError(t, err)
	second, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, 1, cacheStore.sets)
	assert.Equal(t, first.ActiveZones, second.ActiveZones)
}

func TestGet_FallsBackWhenCacheDown(t *testing.T) {
	svc := NewService(seed(t).Repositories(), &mapStore{data: map[string]string{}, fail: true})

	d, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.ActiveZones)
}
