package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Referral is a lead attributed to one affiliate.
type Referral struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	AffiliateID uuid.UUID      `gorm:"type:uuid;not null;index" json:"affiliate_id"`
	LeadName    string         `gorm:"size:255;not null" json:"lead_name"`
	LeadEmail   string         `gorm:"size:255;not null;index" json:"lead_email"`
	Status      ReferralStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Metadata    datatypes.JSON `json:"metadata"`
	Notes       *string        `gorm:"type:text" json:"notes"`

	Affiliate Affiliate `gorm:"foreignkey:AffiliateID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
