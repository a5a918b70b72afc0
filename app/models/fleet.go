package models

import (
	"time"

	"gorm.io/gorm"
)

// District is reference data owned by the city administration.
type District struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	City      string    `gorm:"type:varchar(150)" json:"city"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Team struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" validate:"required"`
	MemberCount int            `gorm:"not null;default:1" json:"member_count" validate:"gte=1"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Vehicle struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Plate     string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"plate" validate:"required"`
	Capacity  int            `gorm:"not null" json:"capacity" validate:"gt=0"` // liters
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
