package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment mirrors the gateway order lifecycle alongside the donation. An
// order can fail and be retried under a new donation, so the two records are
// kept separate. Status must never regress from completed.
type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DonationID uuid.UUID `gorm:"type:uuid;not null;index" json:"donation_id"`

	RazorpayOrderID   *string `gorm:"size:255;unique" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string `gorm:"size:255" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature *string `gorm:"size:255" json:"-"`

	Status        DonationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	FailureReason *string        `gorm:"size:500" json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
