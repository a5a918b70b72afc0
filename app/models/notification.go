package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationReportVerified = "report_verified"
	NotificationReportRejected = "report_rejected"
	NotificationReportResolved = "report_resolved"
	NotificationLevelUp        = "level_up"
)

// Notification is an in-app message for a citizen. Delivery over other
// channels is handled outside this service.
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Type        string         `gorm:"type:varchar(50)" json:"type" validate:"oneof=report_verified report_rejected report_resolved level_up"`
	Content     string         `gorm:"type:text" json:"content"`
	IsRead      bool           `gorm:"default:false" json:"is_read"`
	ReferenceID uint           `json:"reference_id"` // report the notification is about
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}
