package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intern is a referral-based fundraiser. The referral code is generated at
// signup and copied onto donations as a snapshot, so renaming or removing an
// intern never rewrites historical attribution.
type Intern struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	Phone        string    `gorm:"size:20;not null" json:"phone"`
	Password     string    `gorm:"not null" json:"-"`
	ReferralCode string    `gorm:"size:50;not null;unique" json:"referral_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Intern) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
