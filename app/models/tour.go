package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TourStatusPlanned    = "planned"
	TourStatusInProgress = "in_progress"
	TourStatusCompleted  = "completed"
	TourStatusCancelled  = "cancelled"
)

// Tour is a planned or executed collection run over an ordered set of zones.
type Tour struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Reference           string         `gorm:"type:varchar(36);uniqueIndex" json:"reference"`
	ScheduledAt         time.Time      `gorm:"index;not null" json:"scheduled_at"`
	ScheduledDate       string         `gorm:"type:char(10);index;not null" json:"scheduled_date"` // YYYY-MM-DD
	TeamID              uint           `gorm:"index;not null" json:"team_id"`
	Team                *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	VehicleID           uint           `gorm:"index;not null" json:"vehicle_id"`
	Vehicle             *Vehicle       `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Stops               []TourStop     `gorm:"foreignKey:TourID" json:"stops"`
	Status              string         `gorm:"type:varchar(20);not null;default:'planned';index" json:"status"`
	TotalFill           int            `gorm:"not null;default:0" json:"total_fill"`
	EstimatedDuration   float64        `gorm:"not null;default:0" json:"estimated_duration_hours"`
	EstimatedDistanceKm float64        `gorm:"not null;default:0" json:"estimated_distance_km"`
	CreatedByID         *uint          `gorm:"index" json:"created_by_id,omitempty"`
	StartedAt           *time.Time     `json:"started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
	CancelledAt         *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TourStop places one zone at a position inside a tour.
type TourStop struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TourID     uint      `gorm:"index;not null" json:"tour_id"`
	ZoneID     uint      `gorm:"index;not null" json:"zone_id"`
	Zone       *Zone     `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	Position   int       `gorm:"not null" json:"position"`
	FillAtPlan int       `gorm:"not null;default:0" json:"fill_at_plan"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ZoneIDs returns the zones of the tour in stop order.
func (t *Tour) ZoneIDs() []uint {
	ids := make([]uint, len(t.Stops))
	for i, s := range t.Stops {
		ids[i] = s.ZoneID
	}
	return ids
}

// IsClosed reports whether the tour reached a terminal state.
func (t *Tour) IsClosed() bool {
	return t.Status == TourStatusCompleted || t.Status == TourStatusCancelled
}
