package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartnerGroup is a commission tier. CommissionRate is a fraction, 0.25 means 25%.
type PartnerGroup struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    *string   `gorm:"type:text" json:"description"`
	CommissionRate float64   `gorm:"not null" json:"commission_rate"`
	SignupURL      *string   `gorm:"size:512" json:"signup_url"`
	IsDefault      bool      `gorm:"default:false;index" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *PartnerGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
