package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Violation categories a citizen can report.
const (
	ViolationSpeed        = "SPEED_VIOLATION"
	ViolationSignalJump   = "SIGNAL_JUMPING"
	ViolationWrongSide    = "WRONG_SIDE_DRIVING"
	ViolationNoParking    = "NO_PARKING_ZONE"
	ViolationHelmetBelt   = "HELMET_SEATBELT_VIOLATION"
	ViolationMobileUsage  = "MOBILE_PHONE_USAGE"
	ViolationLaneCutting  = "LANE_CUTTING"
	ViolationDrunkDriving = "DRUNK_DRIVING_SUSPECTED"
	ViolationOther        = "OTHERS"
)

// Report review lifecycle states.
const (
	StatusPending     = "PENDING"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusDuplicate   = "DUPLICATE"
)

// Severity levels assigned by reviewers.
const (
	SeverityMinor    = "MINOR"
	SeverityMajor    = "MAJOR"
	SeverityCritical = "CRITICAL"
)

// ViolationReport is a citizen-submitted traffic violation sighting.
// Duplicate fields are written once by the detection pass at submission
// time; review fields are written by the police review flow.
type ViolationReport struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CitizenID     uuid.UUID `gorm:"type:uuid;index;not null" json:"citizenId"`
	ViolationType string    `gorm:"index;not null" json:"violationType"`
	Severity      string    `json:"severity,omitempty"`
	Description   string    `json:"description,omitempty"`

	// CoReportedTypes holds secondary categories observed in the same
	// incident, as a JSON string array. The primary type never repeats here.
	CoReportedTypes datatypes.JSON `json:"coReportedTypes,omitempty"`

	VehicleNumber string `gorm:"index" json:"vehicleNumber,omitempty"`
	VehicleType   string `json:"vehicleType,omitempty"`
	VehicleColor  string `json:"vehicleColor,omitempty"`

	Latitude  float64 `gorm:"index;not null" json:"latitude"`
	Longitude float64 `gorm:"index;not null" json:"longitude"`
	Address   string  `json:"address,omitempty"`
	City      string  `gorm:"index" json:"city,omitempty"`
	District  string  `json:"district,omitempty"`
	State     string  `json:"state,omitempty"`
	Pincode   string  `json:"pincode,omitempty"`

	// OccurredAt is the citizen-asserted time of the incident, distinct
	// from CreatedAt. Duplicate detection windows are anchored on it.
	OccurredAt time.Time `gorm:"index;not null" json:"occurredAt"`

	MediaURLs datatypes.JSON `json:"mediaUrls,omitempty"`

	Status string `gorm:"index;not null;default:PENDING" json:"status"`

	IsDuplicate      bool     `gorm:"not null;default:false" json:"isDuplicate"`
	DuplicateGroupID *uint    `gorm:"index" json:"duplicateGroupId,omitempty"`
	ConfidenceScore  *float64 `json:"confidenceScore,omitempty"`

	ReviewedByID  *uuid.UUID `gorm:"type:uuid;index" json:"reviewedById,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	ReviewNotes   string     `json:"reviewNotes,omitempty"`
	PointsAwarded int        `gorm:"not null;default:0" json:"pointsAwarded"`

	ChallanIssued bool   `gorm:"not null;default:false" json:"challanIssued"`
	ChallanNumber string `json:"challanNumber,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Citizen    *Citizen `gorm:"foreignKey:CitizenID" json:"citizen,omitempty"`
	ReviewedBy *User    `gorm:"foreignKey:ReviewedByID" json:"reviewedBy,omitempty"`
}

// ViolationTypes lists every accepted violation category.
func ViolationTypes() []string {
	return []string{
		ViolationSpeed,
		ViolationSignalJump,
		ViolationWrongSide,
		ViolationNoParking,
		ViolationHelmetBelt,
		ViolationMobileUsage,
		ViolationLaneCutting,
		ViolationDrunkDriving,
		ViolationOther,
	}
}

// ValidViolationType reports whether t is a known violation category.
func ValidViolationType(t string) bool {
	for _, v := range ViolationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusDuplicate:
		return true
	}
	return false
}
