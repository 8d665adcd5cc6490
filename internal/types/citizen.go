package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Citizen is a registered reporter. Counters and balances are maintained
// transactionally alongside report approvals and point redemptions.
type Citizen struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phone string    `gorm:"uniqueIndex;not null" json:"phone"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	City  string    `json:"city,omitempty"`

	IsPhoneVerified      bool `gorm:"not null;default:false" json:"isPhoneVerified"`
	IsIdentityVerified   bool `gorm:"not null;default:false" json:"isIdentityVerified"`
	IsAnonymousMode      bool `gorm:"not null;default:false" json:"isAnonymousMode"`
	NotificationsEnabled bool `gorm:"not null;default:true" json:"notificationsEnabled"`

	TotalPoints     int       `gorm:"not null;default:0" json:"totalPoints"`
	PointsEarned    int       `gorm:"not null;default:0" json:"pointsEarned"`
	PointsRedeemed  int       `gorm:"not null;default:0" json:"pointsRedeemed"`
	ReportsCount    int       `gorm:"not null;default:0" json:"reportsCount"`
	ApprovedReports int       `gorm:"not null;default:0" json:"approvedReports"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c *Citizen) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AccuracyRate is the share of this citizen's reports that were approved,
// as a percentage. Zero when no reports were submitted.
func (c *Citizen) AccuracyRate() float64 {
	if c.ReportsCount == 0 {
		return 0
	}
	return float64(c.ApprovedReports) / float64(c.ReportsCount) * 100
}
