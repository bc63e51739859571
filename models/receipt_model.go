package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DonationReceipt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	DonationID    uuid.UUID  `gorm:"type:uuid;not null;unique" json:"donation_id"`
	ReceiptNumber string     `gorm:"size:50;not null;unique" json:"receipt_number"`
	ReceiptURL    *string    `gorm:"size:500" json:"receipt_url,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *DonationReceipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
