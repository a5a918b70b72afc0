package repository

import (
	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report in the database
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a report by its ID
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

// UpdateWithVersion writes all mutable report columns in one statement guarded
// by the version column.
func (r *reportRepository) UpdateWithVersion(report *models.Report) error {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND version = ?", report.ID, report.Version).
		Updates(map[string]interface{}{
			"user_id":        report.UserID,
			"fill_level":     report.FillLevel,
			"priority":       report.Priority,
			"description":    report.Description,
			"photos":         report.Photos,
			"status":         report.Status,
			"admin_comment":  report.AdminComment,
			"points_awarded": report.PointsAwarded,
			"reviewed_by_id": report.ReviewedByID,
			"verified_at":    report.VerifiedAt,
			"resolved_at":    report.ResolvedAt,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.ConflictError{Entity: "report", ID: report.ID}
	}
	report.Version++
	return nil
}

// Delete soft deletes a pending report as long as nobody changed it since it
// was loaded. Anything else is a ConflictError.
func (r *reportRepository) Delete(report *models.Report) error {
	res := r.db.Where("version = ? AND status = ?", report.Version, models.ReportStatusPending).
		Delete(&models.Report{}, report.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.ConflictError{Entity: "report", ID: report.ID}
	}
	return nil
}

// ListByUserID retrieves a paginated list of the user's reports, newest first
func (r *reportRepository) ListByUserID(userID uint, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error
	return reports, err
}

// CountByZoneID returns the number of reports referencing a zone
func (r *reportRepository) CountByZoneID(zoneID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).Where("zone_id = ?", zoneID).Count(&count).Error
	return count, err
}

// CountByStatus returns report counts grouped by status
func (r *reportRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.Report{}).
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

// AnonymizeByUserID detaches every report of a user and replaces its description.
func (r *reportRepository) AnonymizeByUserID(userID uint, marker string) (int64, error) {
	res := r.db.Unscoped().Model(&models.Report{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"user_id":     nil,
			"description": marker,
			"version":     gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
