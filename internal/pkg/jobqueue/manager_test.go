package jobqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetManager() {
	globalManager = nil
	managerOnce = sync.Once{}
}

func TestGetManager(t *testing.T) {
	resetManager()

	manager1 := GetManager()
	manager2 := GetManager()

	assert.NotNil(t, manager1)
	assert.Same(t, manager1, manager2, "GetManager should return the same instance")
	assert.NotNil(t, manager1.queue)
	assert.NotNil(t, manager1.stopCh)
	assert.False(t, manager1.running)
	assert.Equal(t, time.Minute, manager1.statsInterval)
}

func TestGetManager_WorkerCountFromEnv(t *testing.T) {
	t.Setenv("JOBQUEUE_WORKERS", "7")
	resetManager()

	assert.Equal(t, 7, GetManager().queue.workers)
}

func TestManager_GetQueue(t *testing.T) {
	resetManager()

	manager := GetManager()
	assert.Same(t, manager.queue, manager.GetQueue())
}

func TestManager_IsRunning(t *testing.T) {
	resetManager()
	manager := GetManager()

	assert.False(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = true
	manager.mu.Unlock()
	assert.True(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = false
	manager.mu.Unlock()
	assert.False(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	resetManager()
	manager := GetManager()

	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManager_SetStatsRefresher(t *testing.T) {
	resetManager()
	manager := GetManager()

	manager.SetStatsRefresher(func() error { return nil }, 0)
	assert.NotNil(t, manager.refreshStats)
	assert.Equal(t, time.Minute, manager.statsInterval, "zero interval keeps the default")

	manager.SetStatsRefresher(func() error { return nil }, 5*time.Second)
	assert.Equal(t, 5*time.Second, manager.statsInterval)
}

func TestManager_StatsWorkerRunsRefresh(t *testing.T) {
	resetManager()
	manager := GetManager()

	calls := make(chan struct{}, 4)
	stop := make(chan struct{})
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	manager.wg.Add(1)
	go manager.statsWorker(stop, ticker, func() error {
		calls <- struct{}{}
		return nil
	})

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("stats refresh was never called")
	}
	close(stop)
	manager.wg.Wait()
}
