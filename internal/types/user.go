package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a police or admin account that reviews citizen reports.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `json:"name"`
	BadgeNumber  string    `gorm:"index" json:"badgeNumber,omitempty"`
	Station      string    `json:"station,omitempty"`
	Role         string    `gorm:"not null;default:POLICE" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
