package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

// MemoryStore keeps every repository in process memory for service and
// handler tests. Transactions are serialized and rolled back by restoring a
// snapshot.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data memoryData

	repos *Repositories
}

type memoryData struct {
	nextID        uint
	zones         map[uint]models.Zone
	reports       map[uint]models.Report
	users         map[uint]models.User
	tours         map[uint]models.Tour
	teams         map[uint]models.Team
	vehicles      map[uint]models.Vehicle
	notifications map[uint]models.Notification
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{data: emptyData()}
	s.repos = &Repositories{
		Zone:         &memZones{s},
		Report:       &memReports{s},
		User:         &memUsers{s},
		Tour:         &memTours{s},
		Team:         &memTeams{s},
		Vehicle:      &memVehicles{s},
		Notification: &memNotifications{s},
	}
	return s
}

func emptyData() memoryData {
	return memoryData{
		zones:         map[uint]models.Zone{},
		reports:       map[uint]models.Report{},
		users:         map[uint]models.User{},
		tours:         map[uint]models.Tour{},
		teams:         map[uint]models.Team{},
		vehicles:      map[uint]models.Vehicle{},
		notifications: map[uint]models.Notification{},
	}
}

// Repositories returns the repositories backed by this store
func (s *MemoryStore) Repositories() *Repositories {
	return s.repos
}

// WithinTransaction runs fn and restores the previous state if it fails.
func (s *MemoryStore) WithinTransaction(fn func(repos *Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.repos); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (d memoryData) clone() memoryData {
	c := emptyData()
	c.nextID = d.nextID
	for k, v := range d.zones {
		c.zones[k] = v
	}
	for k, v := range d.reports {
		c.reports[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.tours {
		c.tours[k] = v
	}
	for k, v := range d.teams {
		c.teams[k] = v
	}
	for k, v := range d.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

func (s *MemoryStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

type memZones struct{ s *MemoryStore }

func (r *memZones) Create(zone *models.Zone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if zone.ID == 0 {
		zone.ID = r.s.id()
	}
	now := time.Now()
	zone.CreatedAt, zone.UpdatedAt = now, now
	r.s.data.zones[zone.ID] = *zone
	return nil
}

func (r *memZones) GetByID(id uint) (*models.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	z, ok := r.s.data.zones[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &z, nil
}

func (r *memZones) GetByIDs(ids []uint) ([]models.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var zones []models.Zone
	for _, id := range ids {
		if z, ok := r.s.data.zones[id]; ok {
			zones = append(zones, z)
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

func (r *memZones) Update(zone *models.Zone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.zones[zone.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Name = zone.Name
	stored.Capacity = zone.Capacity
	stored.ZoneType = zone.ZoneType
	stored.Priority = zone.Priority
	stored.Latitude = zone.Latitude
	stored.Longitude = zone.Longitude
	stored.Active = zone.Active
	stored.UpdatedAt = time.Now()
	r.s.data.zones[zone.ID] = stored
	return nil
}

func (r *memZones) UpdateFill(zone *models.Zone) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.zones[zone.ID]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if zone.FillUpdatedAt.Before(stored.FillUpdatedAt) {
		return false, nil
	}
	stored.CurrentFill = zone.CurrentFill
	stored.FillUpdatedAt = zone.FillUpdatedAt
	stored.LastEmptiedAt = zone.LastEmptiedAt
	r.s.data.zones[zone.ID] = stored
	return true, nil
}

func (r *memZones) ListActive() ([]models.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	zones := []models.Zone{}
	for _, z := range r.s.data.zones {
		if z.Active {
			zones = append(zones, z)
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

func (r *memZones) CountActive() (int64, error) {
	zones, _ := r.ListActive()
	return int64(len(zones)), nil
}

type memReports struct{ s *MemoryStore }

func (r *memReports) Create(report *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if report.ID == 0 {
		report.ID = r.s.id()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	r.s.data.reports[report.ID] = *report
	return nil
}

func (r *memReports) GetByID(id uint) (*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.data.reports[id]
	if !ok || rep.DeletedAt.Valid {
		return nil, apperrors.ErrNotFound
	}
	return &rep, nil
}

func (r *memReports) UpdateWithVersion(report *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.reports[report.ID]
	if !ok || stored.Version != report.Version {
		return &apperrors.ConflictError{Entity: "report", ID: report.ID}
	}
	report.Version++
	report.UpdatedAt = time.Now()
	r.s.data.reports[report.ID] = *report
	return nil
}

func (r *memReports) Delete(report *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.data.reports[report.ID]
	if !ok || rep.DeletedAt.Valid || rep.Version != report.Version || rep.Status != models.ReportStatusPending {
		return &apperrors.ConflictError{Entity: "report", ID: report.ID}
	}
	rep.DeletedAt.Time = time.Now()
	rep.DeletedAt.Valid = true
	r.s.data.reports[report.ID] = rep
	return nil
}

func (r *memReports) ListByUserID(userID uint, offset, limit int) ([]models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reports := []models.Report{}
	for _, rep := range r.s.data.reports {
		if rep.IsOwnedBy(userID) && !rep.DeletedAt.Valid {
			reports = append(reports, rep)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID > reports[j].ID })
	if offset >= len(reports) {
		return []models.Report{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(reports) {
		end = len(reports)
	}
	return reports[offset:end], nil
}

func (r *memReports) CountByZoneID(zoneID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.data.reports {
		if rep.ZoneID == zoneID && !rep.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (r *memReports) CountByStatus() (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := map[string]int64{}
	for _, rep := range r.s.data.reports {
		if !rep.DeletedAt.Valid {
			result[rep.Status]++
		}
	}
	return result, nil
}

func (r *memReports) AnonymizeByUserID(userID uint, marker string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rep := range r.s.data.reports {
		if rep.IsOwnedBy(userID) {
			rep.UserID = nil
			rep.Description = marker
			rep.Version++
			r.s.data.reports[id] = rep
			n++
		}
	}
	return n, nil
}

type memUsers struct{ s *MemoryStore }

func (r *memUsers) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.s.id()
	}
	if user.Level < 1 {
		user.Level = 1
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *memUsers) GetByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

// GetByAPIKeyHash is not supported in memory; API keys live in user settings.
func (r *memUsers) GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error) {
	return nil, nil, apperrors.ErrNotFound
}

func (r *memUsers) Update(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *memUsers) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil
	}
	u.DeletedAt.Time = time.Now()
	u.DeletedAt.Valid = true
	r.s.data.users[id] = u
	return nil
}

func (r *memUsers) AddPoints(id uint, amount int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, apperrors.ErrNotFound
	}
	u.Points += amount
	r.s.data.users[id] = u
	return &u, nil
}

func (r *memUsers) RaiseLevel(id uint, level int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil
	}
	if level > u.Level {
		u.Level = level
		r.s.data.users[id] = u
	}
	return nil
}

func (r *memUsers) Leaderboard(limit int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := []models.User{}
	for _, u := range r.s.data.users {
		if u.Role == models.ROLE_CITIZEN && u.Status == models.STATUS_ACTIVE && !u.DeletedAt.Valid {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].ID < users[j].ID
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memUsers) TotalPoints() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, u := range r.s.data.users {
		total += int64(u.Points)
	}
	return total, nil
}

type memTours struct{ s *MemoryStore }

func (r *memTours) Create(tour *models.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tour.ID == 0 {
		tour.ID = r.s.id()
	}
	for i := range tour.Stops {
		if tour.Stops[i].ID == 0 {
			tour.Stops[i].ID = r.s.id()
		}
		tour.Stops[i].TourID = tour.ID
	}
	stored := *tour
	stored.Stops = append([]models.TourStop(nil), tour.Stops...)
	r.s.data.tours[tour.ID] = stored
	return nil
}

func (r *memTours) GetByID(id uint) (*models.Tour, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tours[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t.Stops = append([]models.TourStop(nil), t.Stops...)
	return &t, nil
}

func (r *memTours) UpdateStatus(tour *models.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.tours[tour.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Status = tour.Status
	stored.StartedAt = tour.StartedAt
	stored.CompletedAt = tour.CompletedAt
	stored.CancelledAt = tour.CancelledAt
	r.s.data.tours[tour.ID] = stored
	return nil
}

func (r *memTours) ZonesScheduledOn(date string) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uint]bool{}
	ids := []uint{}
	for _, t := range r.s.data.tours {
		if t.ScheduledDate != date || t.Status == models.TourStatusCancelled {
			continue
		}
		for _, stop := range t.Stops {
			if !seen[stop.ZoneID] {
				seen[stop.ZoneID] = true
				ids = append(ids, stop.ZoneID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memTours) CountByStatus() (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := map[string]int64{}
	for _, t := range r.s.data.tours {
		result[t.Status]++
	}
	return result, nil
}

type memTeams struct{ s *MemoryStore }

func (r *memTeams) Create(team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if team.ID == 0 {
		team.ID = r.s.id()
	}
	r.s.data.teams[team.ID] = *team
	return nil
}

func (r *memTeams) GetByID(id uint) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (r *memTeams) List() ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	teams := []models.Team{}
	for _, t := range r.s.data.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

type memVehicles struct{ s *MemoryStore }

func (r *memVehicles) Create(vehicle *models.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if vehicle.ID == 0 {
		vehicle.ID = r.s.id()
	}
	r.s.data.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *memVehicles) GetByID(id uint) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &v, nil
}

func (r *memVehicles) List() ([]models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	vehicles := []models.Vehicle{}
	for _, v := range r.s.data.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].Plate < vehicles[j].Plate })
	return vehicles, nil
}

type memNotifications struct{ s *MemoryStore }

func (r *memNotifications) Create(n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == 0 {
		n.ID = r.s.id()
	}
	n.CreatedAt = time.Now()
	r.s.data.notifications[n.ID] = *n
	return nil
}

func (r *memNotifications) ListByUserID(userID uint, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []models.Notification{}
	for _, n := range r.s.data.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
