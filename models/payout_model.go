package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payout struct {
	ID                uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	AffiliateID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"affiliate_id"`
	AmountCents       int64        `gorm:"not null" json:"amount_cents"`
	CommissionCount   int          `gorm:"not null;default:0" json:"commission_count"`
	Status            PayoutStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Method            string       `gorm:"size:50;not null" json:"method"`
	Notes             *string      `gorm:"type:text" json:"notes"`
	ProviderReference *string      `gorm:"size:255" json:"provider_reference"`
	StatementURL      *string      `gorm:"size:512" json:"statement_url"`
	CreatedBy         *uuid.UUID   `gorm:"type:uuid" json:"created_by"`
	ProcessedAt       *time.Time   `json:"processed_at"`

	Affiliate Affiliate `gorm:"foreignkey:AffiliateID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
