package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Feedback kinds a submitter can choose.
const (
	FeedbackApp     = "APP_FEEDBACK"
	FeedbackReport  = "REPORT_FEEDBACK"
	FeedbackService = "SERVICE_FEEDBACK"
	FeedbackFeature = "FEATURE_REQUEST"
)

// Feedback categories.
const (
	FeedbackCategoryUIUX        = "UI_UX"
	FeedbackCategoryBug         = "BUG"
	FeedbackCategoryPerformance = "PERFORMANCE"
	FeedbackCategorySuggestion  = "SUGGESTION"
	FeedbackCategoryComplaint   = "COMPLAINT"
	FeedbackCategoryPraise      = "PRAISE"
)

// Feedback handling states.
const (
	FeedbackPending  = "PENDING"
	FeedbackInReview = "IN_REVIEW"
	FeedbackResolved = "RESOLVED"
	FeedbackClosed   = "CLOSED"
)

// Feedback priorities.
const (
	FeedbackPriorityLow      = "LOW"
	FeedbackPriorityMedium   = "MEDIUM"
	FeedbackPriorityHigh     = "HIGH"
	FeedbackPriorityCritical = "CRITICAL"
)

// Feedback is a citizen- or officer-submitted product/service report.
// Exactly one of CitizenID and UserID is set, depending on who filed it.
// When tied to a violation report, submission also appends a
// FEEDBACK_ADDED entry to that report's event trail.
type Feedback struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CitizenID    *uuid.UUID `gorm:"type:uuid;index" json:"citizenId,omitempty"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	ReportID     *uint      `gorm:"index" json:"reportId,omitempty"`
	FeedbackType string     `gorm:"index;not null" json:"feedbackType"`
	Category     string     `gorm:"index;not null" json:"category"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"not null" json:"description"`
	Rating       *int       `json:"rating,omitempty"`
	Priority     string     `gorm:"index;not null" json:"priority"`
	Status       string     `gorm:"index;not null;default:PENDING" json:"status"`
	IsAnonymous  bool       `gorm:"not null;default:false" json:"isAnonymous"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	ContactPhone string     `json:"contactPhone,omitempty"`

	Attachments datatypes.JSON `json:"attachments,omitempty"`

	AssignedToID    *uuid.UUID `gorm:"type:uuid;index" json:"assignedToId,omitempty"`
	ResolutionNotes string     `json:"resolutionNotes,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Responses []FeedbackResponse `gorm:"foreignKey:FeedbackID" json:"responses,omitempty"`
}

// FeedbackResponse is one officer reply on a feedback thread. Internal
// responses are visible to police only.
type FeedbackResponse struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FeedbackID  uint      `gorm:"index;not null" json:"feedbackId"`
	ResponderID uuid.UUID `gorm:"type:uuid;not null" json:"responderId"`
	Message     string    `gorm:"not null" json:"message"`
	IsInternal  bool      `gorm:"not null;default:false" json:"isInternal"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidFeedbackType reports whether t is a known feedback kind.
func ValidFeedbackType(t string) bool {
	switch t {
	case FeedbackApp, FeedbackReport, FeedbackService, FeedbackFeature:
		return true
	}
	return false
}

// ValidFeedbackCategory reports whether c is a known category.
func ValidFeedbackCategory(c string) bool {
	switch c {
	case FeedbackCategoryUIUX, FeedbackCategoryBug, FeedbackCategoryPerformance,
		FeedbackCategorySuggestion, FeedbackCategoryComplaint, FeedbackCategoryPraise:
		return true
	}
	return false
}

// ValidFeedbackStatus reports whether s is a known handling state.
func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackPending, FeedbackInReview, FeedbackResolved, FeedbackClosed:
		return true
	}
	return false
}

// ValidFeedbackPriority reports whether p is a known priority.
func ValidFeedbackPriority(p string) bool {
	switch p {
	case FeedbackPriorityLow, FeedbackPriorityMedium, FeedbackPriorityHigh, FeedbackPriorityCritical:
		return true
	}
	return false
}
