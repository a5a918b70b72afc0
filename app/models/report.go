package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusVerified = "verified"
	ReportStatusRejected = "rejected"
	ReportStatusResolved = "resolved"
)

const (
	MaxReportPhotos      = 5
	MaxReportDescription = 1000
	// AnonymizedDescription replaces the description of reports whose author was deleted.
	AnonymizedDescription = "[report of a deleted user]"
)

// Report is a citizen-submitted observation about a zone's fill state.
type Report struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          *uint          `gorm:"index" json:"user_id,omitempty"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
	ZoneID          uint           `gorm:"index;not null" json:"zone_id" validate:"required"`
	Zone            *Zone          `gorm:"foreignKey:ZoneID" json:"zone,omitempty" validate:"-"`
	DistrictID      uint           `gorm:"index;not null" json:"district_id"`
	FillLevel       float64        `gorm:"not null" json:"fill_level" validate:"gte=0,lte=100"`
	Priority        string         `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"oneof=low medium high"`
	Description     string         `gorm:"type:text" json:"description" validate:"max=1000"`
	Photos          datatypes.JSON `gorm:"type:json" json:"photos" validate:"-"`
	Latitude        float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64        `json:"longitude" validate:"gte=-180,lte=180"`
	Status          string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminComment    string         `gorm:"type:text" json:"admin_comment,omitempty"`
	EstimatedPoints int            `gorm:"not null;default:0" json:"estimated_points"`
	PointsAwarded   int            `gorm:"not null;default:0" json:"points_awarded"`
	ReviewedByID    *uint          `gorm:"index" json:"reviewed_by_id,omitempty"`
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	Version         uint           `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Report) Validate() error {
	return validator.New().Struct(r)
}

// PhotoRefs decodes the stored photo references. Corrupt data yields an empty list.
func (r *Report) PhotoRefs() []string {
	if len(r.Photos) == 0 {
		return []string{}
	}
	var refs []string
	if err := json.Unmarshal(r.Photos, &refs); err != nil {
		return []string{}
	}
	return refs
}

// SetPhotoRefs replaces the stored photo references.
func (r *Report) SetPhotoRefs(refs []string) {
	if refs == nil {
		refs = []string{}
	}
	data, _ := json.Marshal(refs)
	r.Photos = datatypes.JSON(data)
}

// IsOwnedBy reports whether the given user authored the report.
func (r *Report) IsOwnedBy(userID uint) bool {
	return r.UserID != nil && *r.UserID == userID
}
