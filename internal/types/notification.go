package types

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds surfaced to citizens.
const (
	NotificationStatusChange = "STATUS_CHANGE"
	NotificationPointsEarned = "POINTS_EARNED"
	NotificationSystem       = "SYSTEM"
)

// Notification is an in-app message for a citizen. Reading one deletes
// it; rows past ExpiresAt are removed by the lazy expiry sweep that
// runs ahead of each listing.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CitizenID uuid.UUID `gorm:"type:uuid;index;not null" json:"citizenId"`
	ReportID  *uint     `gorm:"index" json:"reportId,omitempty"`
	Type      string    `gorm:"not null" json:"type"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body,omitempty"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
