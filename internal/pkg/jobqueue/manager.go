package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/internal/pkg/config"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue         *Queue
	statsTicker   *time.Ticker
	statsInterval time.Duration
	refreshStats  func() error
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 3
		if cfg, err := config.Load(); err == nil && cfg.QueueWorkers > 0 {
			workerCount = cfg.QueueWorkers
		}

		globalManager = &Manager{
			queue:         NewQueue(workerCount),
			statsInterval: time.Minute,
			stopCh:        make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetStatsRefresher registers the periodic dashboard statistics refresh.
func (m *Manager) SetStatsRefresher(fn func() error, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshStats = fn
	if interval > 0 {
		m.statsInterval = interval
	}
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	if m.refreshStats != nil {
		m.statsTicker = time.NewTicker(m.statsInterval)
		m.wg.Add(1)
		go m.statsWorker(m.stopCh, m.statsTicker, m.refreshStats)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.statsTicker != nil {
		m.statsTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	m.wg.Wait()
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// statsWorker periodically recomputes the cached dashboard statistics
func (m *Manager) statsWorker(stopCh chan struct{}, ticker *time.Ticker, refresh func() error) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started stats worker (interval: %s)", m.statsInterval)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Stats worker stopping")
			return
		case <-ticker.C:
			if err := refresh(); err != nil {
				log.Errorf("[JobQueue Manager] Stats refresh error: %v", err)
			}
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
