package statistics

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

const (
	CacheKeyDashboard = "statistics:dashboard"
	CacheExpiration   = 30 * time.Minute
)

// Dashboard is the admin overview of reports, zones, tours and points.
type Dashboard struct {
	ReportsByStatus map[string]int64 `json:"reports_by_status"`
	ToursByStatus   map[string]int64 `json:"tours_by_status"`
	ActiveZones     int64            `json:"active_zones"`
	UrgentZones     int64            `json:"urgent_zones"`
	WarningZones    int64            `json:"warning_zones"`
	TotalPoints     int64            `json:"total_points"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Store is the key/value cache the dashboard is kept in.
type Store interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

type redisStore struct{}

func (redisStore) Get(key string) (string, error) { return cache.Get(key) }
func (redisStore) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

// Service computes and caches dashboard statistics
type Service struct {
	repos *repository.Repositories
	store Store
	mu    sync.Mutex
}

// NewService creates a statistics service. A nil store uses the shared redis cache.
func NewService(repos *repository.Repositories, store Store) *Service {
	if store == nil {
		store = redisStore{}
	}
	return &Service{repos: repos, store: store}
}

// Compute reads the current figures from the repositories.
func (s *Service) Compute() (*Dashboard, error) {
	reports, err := s.repos.Report.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	tours, err := s.repos.Tour.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count tours: %w", err)
	}
	zones, err := s.repos.Zone.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	points, err := s.repos.User.TotalPoints()
	if err != nil {
		return nil, fmt.Errorf("failed to sum points: %w", err)
	}

	d := &Dashboard{
		ReportsByStatus: reports,
		ToursByStatus:   tours,
		ActiveZones:     int64(len(zones)),
		TotalPoints:     points,
		GeneratedAt:     time.Now().UTC(),
	}
	for i := range zones {
		urgency, err := zonestate.Classify(&zones[i])
		if err != nil {
			log.Warnf("[Statistics] Skipping zone %d: %v", zones[i].ID, err)
			continue
		}
		switch urgency {
		case zonestate.UrgencyCritical:
			d.UrgentZones++
		case zonestate.UrgencyWarning:
			d.WarningZones++
		}
	}
	for _, status := range []string{models.ReportStatusPending, models.ReportStatusVerified, models.ReportStatusRejected, models.ReportStatusResolved} {
		if _, ok := d.ReportsByStatus[status]; !ok {
			d.ReportsByStatus[status] = 0
		}
	}
	return d, nil
}

// Refresh recomputes the dashboard and stores it in the cache.
func (s *Service) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.Compute()
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.store.Set(CacheKeyDashboard, string(data), CacheExpiration); err != nil {
		return fmt.Errorf("failed to cache dashboard: %w", err)
	}
	log.Debugf("[Statistics] Dashboard refreshed: %d active zones, %d urgent", d.ActiveZones, d.UrgentZones)
	return nil
}

// Get returns the cached dashboard, computing it when the cache is empty or unreachable.
func (s *Service) Get() (*Dashboard, error) {
	if raw, err := s.store.Get(CacheKeyDashboard); err == nil && raw != "" {
		var d Dashboard
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			return &d, nil
		}
	}
	if err := s.Refresh(); err != nil {
		log.Warnf("[Statistics] Cache refresh failed, serving live figures: %v", err)
		return s.Compute()
	}
	raw, err := s.store.Get(CacheKeyDashboard)
	if err != nil {
		return s.Compute()
	}
	var d Dashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}
