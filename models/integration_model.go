package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IntegrationSettings struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;unique" json:"user_id"`
	PublicKey  string         `gorm:"size:80;not null;unique" json:"public_key"`
	APIKey     string         `gorm:"size:80;not null;unique" json:"api_key"`
	Provider   string         `gorm:"size:50;not null;default:'refferq'" json:"provider"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	WebhookURL *string        `gorm:"size:512" json:"webhook_url"`
	Config     datatypes.JSON `json:"config"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *IntegrationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
