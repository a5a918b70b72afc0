package repository

import (
	"github.com/ManuelReschke/CleanCity/app/models"
	"gorm.io/gorm"
)

// zoneRepository implements the ZoneRepository interface
type zoneRepository struct {
	db *gorm.DB
}

// NewZoneRepository creates a new zone repository instance
func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

// Create creates a new zone in the database
func (r *zoneRepository) Create(zone *models.Zone) error {
	return r.db.Create(zone).Error
}

// GetByID retrieves a zone by its ID, including deactivated zones
func (r *zoneRepository) GetByID(id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := r.db.First(&zone, id).Error; err != nil {
		return nil, translate(err)
	}
	return &zone, nil
}

// GetByIDs retrieves the given zones ordered by ID
func (r *zoneRepository) GetByIDs(ids []uint) ([]models.Zone, error) {
	var zones []models.Zone
	if len(ids) == 0 {
		return zones, nil
	}
	err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&zones).Error
	return zones, err
}

// Update saves administrative fields of a zone. Fill columns go through UpdateFill.
func (r *zoneRepository) Update(zone *models.Zone) error {
	return r.db.Model(zone).
		Select("name", "capacity", "zone_type", "priority", "latitude", "longitude", "active").
		Updates(zone).Error
}

// UpdateFill writes the fill columns guarded by fill_updated_at so that the
// latest operation timestamp wins. It returns false when nothing was written.
func (r *zoneRepository) UpdateFill(zone *models.Zone) (bool, error) {
	res := r.db.Model(&models.Zone{}).
		Where("id = ? AND fill_updated_at <= ?", zone.ID, zone.FillUpdatedAt).
		Updates(map[string]interface{}{
			"current_fill":    zone.CurrentFill,
			"fill_updated_at": zone.FillUpdatedAt,
			"last_emptied_at": zone.LastEmptiedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActive returns all active zones ordered by ID
func (r *zoneRepository) ListActive() ([]models.Zone, error) {
	var zones []models.Zone
	err := r.db.Where("active = ?", true).Order("id ASC").Find(&zones).Error
	return zones, err
}

// CountActive returns the number of active zones
func (r *zoneRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Zone{}).Where("active = ?", true).Count(&count).Error
	return count, err
}
