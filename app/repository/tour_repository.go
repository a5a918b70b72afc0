package repository

import (
	"github.com/ManuelReschke/CleanCity/app/models"
	"gorm.io/gorm"
)

// tourRepository implements the TourRepository interface
type tourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates a new tour repository instance
func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{db: db}
}

// Create stores the tour together with its stops
func (r *tourRepository) Create(tour *models.Tour) error {
	return r.db.Create(tour).Error
}

// GetByID retrieves a tour with its stops in position order
func (r *tourRepository) GetByID(id uint) (*models.Tour, error) {
	var tour models.Tour
	err := r.db.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&tour, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tour, nil
}

// UpdateStatus persists the status and lifecycle timestamps of a tour
func (r *tourRepository) UpdateStatus(tour *models.Tour) error {
	return r.db.Model(&models.Tour{}).Where("id = ?", tour.ID).
		Updates(map[string]interface{}{
			"status":       tour.Status,
			"started_at":   tour.StartedAt,
			"completed_at": tour.CompletedAt,
			"cancelled_at": tour.CancelledAt,
		}).Error
}

// ZonesScheduledOn returns the zones already assigned to a non-cancelled tour on date
func (r *tourRepository) ZonesScheduledOn(date string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.TourStop{}).
		Joins("JOIN tours ON tours.id = tour_stops.tour_id").
		Where("tours.scheduled_date = ? AND tours.status <> ? AND tours.deleted_at IS NULL", date, models.TourStatusCancelled).
		Distinct().
		Pluck("tour_stops.zone_id", &ids).Error
	return ids, err
}

// CountByStatus returns tour counts grouped by status
func (r *tourRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.Tour{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}
