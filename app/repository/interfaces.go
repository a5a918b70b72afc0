package repository

import (
	"github.com/ManuelReschke/CleanCity/app/models"
	"gorm.io/gorm"
)

// ZoneRepository defines the interface for zone-related database operations
type ZoneRepository interface {
	Create(zone *models.Zone) error
	GetByID(id uint) (*models.Zone, error)
	GetByIDs(ids []uint) ([]models.Zone, error)
	Update(zone *models.Zone) error
	// UpdateFill writes fill columns only if no newer fill write exists.
	UpdateFill(zone *models.Zone) (bool, error)
	ListActive() ([]models.Zone, error)
	CountActive() (int64, error)
}

// ReportRepository defines the interface for report-related database operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	// UpdateWithVersion persists the report if its version still matches the
	// stored one and bumps the version. Stale writes fail with ConflictError.
	UpdateWithVersion(report *models.Report) error
	// Delete removes a pending report whose version still matches.
	Delete(report *models.Report) error
	ListByUserID(userID uint, offset, limit int) ([]models.Report, error)
	CountByZoneID(zoneID uint) (int64, error)
	CountByStatus() (map[string]int64, error)
	AnonymizeByUserID(userID uint, marker string) (int64, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	// AddPoints increments points atomically and returns the fresh row.
	AddPoints(id uint, amount int) (*models.User, error)
	// RaiseLevel sets the level only when it is higher than the stored one.
	RaiseLevel(id uint, level int) error
	Leaderboard(limit int) ([]models.User, error)
	TotalPoints() (int64, error)
}

// TourRepository defines the interface for tour-related database operations
type TourRepository interface {
	Create(tour *models.Tour) error
	GetByID(id uint) (*models.Tour, error)
	UpdateStatus(tour *models.Tour) error
	// ZonesScheduledOn returns zone IDs held by non-cancelled tours on the date (YYYY-MM-DD).
	ZonesScheduledOn(date string) ([]uint, error)
	CountByStatus() (map[string]int64, error)
}

// TeamRepository defines the interface for team operations
type TeamRepository interface {
	Create(team *models.Team) error
	GetByID(id uint) (*models.Team, error)
	List() ([]models.Team, error)
}

// VehicleRepository defines the interface for vehicle operations
type VehicleRepository interface {
	Create(vehicle *models.Vehicle) error
	GetByID(id uint) (*models.Vehicle, error)
	List() ([]models.Vehicle, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByUserID(userID uint, limit int) ([]models.Notification, error)
}

// QueueRepository inspects the redis keys of the job queue
type QueueRepository interface {
	GetListLength(key string) (int64, error)
	GetHashCounts(key string) (map[string]int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Zone         ZoneRepository
	Report       ReportRepository
	User         UserRepository
	Tour         TourRepository
	Team         TeamRepository
	Vehicle      VehicleRepository
	Notification NotificationRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(fn func(repos *Repositories) error) error
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Zone:         NewZoneRepository(db),
		Report:       NewReportRepository(db),
		User:         NewUserRepository(db),
		Tour:         NewTourRepository(db),
		Team:         NewTeamRepository(db),
		Vehicle:      NewVehicleRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
