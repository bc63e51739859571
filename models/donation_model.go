package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

// CanTransitionTo reports whether a status change is allowed. Pending is the
// only non-terminal state; completed and failed never change again except that
// a failed donation may still complete when the gateway reports success after
// a client-side failure report.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	switch s {
	case DonationPending:
		return next == DonationCompleted || next == DonationFailed
	case DonationFailed:
		return next == DonationCompleted
	default:
		return false
	}
}

// Donation is the ledger entity. Amount is stored in paise. Rows are never
// deleted; status only moves forward through the reconciliation service's
// conditional update.
type Donation struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	DonorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"donor_id"`
	Amount       int64          `gorm:"not null" json:"amount"`
	Currency     string         `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Message      *string        `gorm:"size:500" json:"message,omitempty"`
	ReferralCode *string        `gorm:"size:50;index" json:"referral_code,omitempty"`
	Status       DonationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	RazorpayOrderID   *string `gorm:"size:255;unique" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string `gorm:"size:255" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature *string `gorm:"size:255" json:"-"`

	ReceiptSent bool `gorm:"not null;default:false" json:"receipt_sent"`

	Donor Donor `gorm:"foreignkey:DonorID" json:"donor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
