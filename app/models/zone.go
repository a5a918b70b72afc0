package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ZoneTypeResidential = "residential"
	ZoneTypeCommercial  = "commercial"
	ZoneTypeIndustrial  = "industrial"
	ZoneTypePublic      = "public"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Zone is a physical waste-collection point with a bounded capacity in liters.
// Priority is the declared (administrative) priority; measured urgency is
// derived from the fill level and never stored here.
type Zone struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	DistrictID    uint           `gorm:"index;not null" json:"district_id" validate:"required"`
	District      *District      `gorm:"foreignKey:DistrictID" json:"district,omitempty" validate:"-"`
	Capacity      int            `gorm:"not null" json:"capacity" validate:"gt=0"`
	CurrentFill   int            `gorm:"not null;default:0" json:"current_fill" validate:"gte=0,ltefield=Capacity"`
	ZoneType      string         `gorm:"type:varchar(20);not null;default:'residential'" json:"zone_type" validate:"oneof=residential commercial industrial public"`
	Priority      string         `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"oneof=low medium high"`
	Latitude      float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64        `json:"longitude" validate:"gte=-180,lte=180"`
	Active        bool           `gorm:"not null;default:true" json:"active"`
	LastEmptiedAt *time.Time     `json:"last_emptied_at,omitempty"`
	FillUpdatedAt time.Time      `json:"fill_updated_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (z *Zone) Validate() error {
	return validator.New().Struct(z)
}

// PriorityRank maps a declared priority to a sortable rank (high first).
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
