package types

import (
	"time"

	"github.com/google/uuid"
)

// Fine payment states.
const (
	FineIssued = "ISSUED"
	FinePaid   = "PAID"
	FineWaived = "WAIVED"
)

// FineRecord is a fine issued against an approved report's vehicle.
type FineRecord struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID      uint      `gorm:"uniqueIndex;not null" json:"reportId"`
	IssuedByID    uuid.UUID `gorm:"type:uuid;not null" json:"issuedById"`
	VehicleNumber string    `gorm:"index;not null" json:"vehicleNumber"`
	Amount        int       `gorm:"not null" json:"amount"`
	Status        string    `gorm:"index;not null;default:ISSUED" json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
