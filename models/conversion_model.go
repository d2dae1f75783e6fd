package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversion is the raw tracking event log. It is independent of the
// Transaction ledger.
type Conversion struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	AffiliateID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"affiliate_id"`
	ReferralID    *uuid.UUID          `gorm:"type:uuid;index" json:"referral_id"`
	EventType     ConversionEventType `gorm:"size:20;not null" json:"event_type"`
	AmountCents   int64               `gorm:"default:0" json:"amount_cents"`
	Currency      string              `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status        ConversionStatus    `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	EventMetadata datatypes.JSON      `json:"event_metadata"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Conversion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
