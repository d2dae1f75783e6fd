package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Affiliate struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;unique" json:"user_id"`
	ReferralCode   string         `gorm:"size:32;not null;unique" json:"referral_code"`
	PartnerGroupID *uuid.UUID     `gorm:"type:uuid;index" json:"partner_group_id"`
	PayoutDetails  datatypes.JSON `json:"payout_details"`

	TotalClicks       int64 `gorm:"default:0" json:"total_clicks"`
	TotalLeads        int64 `gorm:"default:0" json:"total_leads"`
	TotalRevenueCents int64 `gorm:"default:0" json:"total_revenue_cents"`

	User         User          `gorm:"foreignkey:UserID" json:"user"`
	PartnerGroup *PartnerGroup `gorm:"foreignkey:PartnerGroupID" json:"partner_group,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Affiliate) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
