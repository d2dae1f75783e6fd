package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is a realized payment on a referral. AmountCents, CommissionCents
// and CommissionRate are fixed at creation.
type Transaction struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ReferralID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"referral_id"`
	AffiliateID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"affiliate_id"`
	PayoutID        *uuid.UUID        `gorm:"type:uuid;index" json:"payout_id"`
	CustomerName    string            `gorm:"size:255" json:"customer_name"`
	CustomerEmail   string            `gorm:"size:255" json:"customer_email"`
	AmountCents     int64             `gorm:"not null" json:"amount_cents"`
	CommissionCents int64             `gorm:"not null" json:"commission_cents"`
	CommissionRate  float64           `gorm:"not null" json:"commission_rate"`
	Status          TransactionStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Description     *string           `gorm:"type:text" json:"description"`
	InvoiceID       *string           `gorm:"size:255" json:"invoice_id"`
	PaymentMethod   *string           `gorm:"size:100" json:"payment_method"`
	PaidAt          *time.Time        `json:"paid_at"`
	CreatedBy       *uuid.UUID        `gorm:"type:uuid" json:"created_by"`

	Referral  Referral  `gorm:"foreignkey:ReferralID" json:"-"`
	Affiliate Affiliate `gorm:"foreignkey:AffiliateID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
