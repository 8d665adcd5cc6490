package types

import (
	"time"

	"github.com/google/uuid"
)

// Points ledger entry directions.
const (
	PointsEarn   = "EARN"
	PointsRedeem = "REDEEM"
)

// PointsTransaction is one immutable ledger entry for a citizen's
// reward balance. Points is the signed delta (positive for EARN,
// negative for REDEEM) so the balance is the plain sum of a citizen's
// rows. BalanceAfter snapshots the running balance so the ledger can
// be audited without replay.
type PointsTransaction struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CitizenID    uuid.UUID `gorm:"type:uuid;index;not null" json:"citizenId"`
	ReportID     *uint     `gorm:"index" json:"reportId,omitempty"`
	Type         string    `gorm:"not null" json:"type"`
	Points       int       `gorm:"not null" json:"points"`
	BalanceAfter int       `gorm:"not null" json:"balanceAfter"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}
