package repository

import (
	"strings"

	"github.com/ManuelReschke/CleanCity/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and user settings.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var settings models.UserSettings
	query := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed)
	if err := query.First(&settings).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, settings.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &user, &settings, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// AddPoints adds amount to the stored points in a single UPDATE and reloads the row.
func (r *userRepository) AddPoints(id uint, amount int) (*models.User, error) {
	res := r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound)
	}
	return r.GetByID(id)
}

// RaiseLevel stores level unless the user already has an equal or higher one.
func (r *userRepository) RaiseLevel(id uint, level int) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND level < ?", id, level).
		UpdateColumn("level", level).Error
}

// Leaderboard returns active citizens ordered by points
func (r *userRepository) Leaderboard(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("role = ? AND status = ?", models.ROLE_CITIZEN, models.STATUS_ACTIVE).
		Order("points DESC").Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// TotalPoints returns the sum of all user points
func (r *userRepository) TotalPoints() (int64, error) {
	var total int64
	err := r.db.Model(&models.User{}).Select("COALESCE(SUM(points), 0)").Scan(&total).Error
	return total, err
}
