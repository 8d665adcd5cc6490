package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event types recorded on a report's audit trail.
const (
	EventReportSubmitted = "REPORT_SUBMITTED"
	EventStatusUpdated   = "STATUS_UPDATED"
	EventPointsAwarded   = "POINTS_AWARDED"
	EventFeedbackAdded   = "FEEDBACK_ADDED"
	EventMediaUploaded   = "MEDIA_UPLOADED"
)

// ReportEvent is one append-only entry on a report's audit trail.
// ActorID identifies the citizen or reviewer that caused the event;
// it is nil for system-generated entries.
type ReportEvent struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID    uint           `gorm:"index;not null" json:"reportId"`
	EventType   string         `gorm:"index;not null" json:"eventType"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	ActorID     *uuid.UUID     `gorm:"type:uuid" json:"actorId,omitempty"`
	ActorRole   string         `json:"actorRole,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}
