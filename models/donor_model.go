package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donor is deduplicated by email: the first donation from a new address
// creates the row, later donations reuse it.
type Donor struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	PanNumber *string   `gorm:"size:20" json:"pan_number,omitempty"`
	Address   *string   `gorm:"type:text" json:"address,omitempty"`
	City      *string   `gorm:"size:100" json:"city,omitempty"`
	State     *string   `gorm:"size:100" json:"state,omitempty"`
	Pincode   *string   `gorm:"size:10" json:"pincode,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Donor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
