package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTransactionInput struct {
	ReferralID    uuid.UUID
	Amount        decimal.Decimal
	Description   *string
	InvoiceID     *string
	PaymentMethod *string
	PaidAt        *time.Time
	CreatedBy     *uuid.UUID
}

// UpdateTransactionInput carries the only mutable fields of a transaction.
type UpdateTransactionInput struct {
	Status        *models.TransactionStatus
	Description   *string
	InvoiceID     *string
	PaymentMethod *string
	PaidAt        *time.Time
}

type TransactionFilter struct {
	ReferralID  *uuid.UUID
	AffiliateID *uuid.UUID
}

// CreateTransaction records a COMPLETED payment on a referral with the
// commission rate of the affiliate's partner group at this moment.
func CreateTransaction(db *gorm.DB, in CreateTransactionInput) (*models.Transaction, error) {
	if in.ReferralID == uuid.Nil || !in.Amount.IsPositive() {
		return nil, NewValidation("Referral ID and amount are required")
	}

	var txn models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var referral models.Referral
		if err := tx.Preload("Affiliate.PartnerGroup").First(&referral, "id = ?", in.ReferralID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Referral not found")
			}
			return err
		}

		commission := ComputeCommission(in.Amount, referral.Affiliate.PartnerGroup)
		paidAt := time.Now()
		if in.PaidAt != nil {
			paidAt = *in.PaidAt
		}

		txn = models.Transaction{
			ReferralID:      referral.ID,
			AffiliateID:     referral.AffiliateID,
			CustomerName:    referral.LeadName,
			CustomerEmail:   referral.LeadEmail,
			AmountCents:     commission.AmountCents,
			CommissionCents: commission.CommissionCents,
			CommissionRate:  commission.Rate,
			Status:          models.TransactionCompleted,
			Description:     in.Description,
			InvoiceID:       in.InvoiceID,
			PaymentMethod:   in.PaymentMethod,
			PaidAt:          &paidAt,
			CreatedBy:       in.CreatedBy,
		}
		if err := tx.Omit(clause.Associations).Create(&txn).Error; err != nil {
			return err
		}

		metadata, err := json.Marshal(map[string]interface{}{
			"transactionId":   txn.ID.String(),
			"commissionCents": commission.CommissionCents,
			"commissionRate":  commission.Rate,
		})
		if err != nil {
			return err
		}
		conversion := models.Conversion{
			AffiliateID:   referral.AffiliateID,
			ReferralID:    &referral.ID,
			EventType:     models.EventPurchase,
			AmountCents:   commission.AmountCents,
			Currency:      DefaultCurrency,
			Status:        models.ConversionApproved,
			EventMetadata: datatypes.JSON(metadata),
		}
		if err := tx.Create(&conversion).Error; err != nil {
			return err
		}
		return tx.Model(&models.Affiliate{}).Where("id = ?", referral.AffiliateID).
			Update("total_revenue_cents", gorm.Expr("total_revenue_cents + ?", commission.AmountCents)).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func ListTransactions(db *gorm.DB, filter TransactionFilter) ([]models.Transaction, error) {
	query := db.Preload("Referral").Preload("Affiliate.User").Preload("Affiliate.PartnerGroup").Order("created_at desc")
	if filter.ReferralID != nil {
		query = query.Where("referral_id = ?", *filter.ReferralID)
	}
	if filter.AffiliateID != nil {
		query = query.Where("affiliate_id = ?", *filter.AffiliateID)
	}
	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// UpdateTransaction never touches amount, commission or rate. PAID is only
// reachable through a payout.
func UpdateTransaction(db *gorm.DB, id uuid.UUID, in UpdateTransactionInput) (*models.Transaction, error) {
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, NewValidation("Invalid transaction status")
		}
		if *in.Status == models.TransactionPaid {
			return nil, NewValidation("Transactions are marked PAID by creating a payout")
		}
	}

	var txn models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&txn, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Transaction not found")
			}
			return err
		}
		if in.Status != nil && txn.Status == models.TransactionPaid && *in.Status != models.TransactionPaid {
			return NewConflict("Transaction is part of a payout").WithStatus(400)
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if in.Status != nil {
			updates["status"] = *in.Status
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.InvoiceID != nil {
			updates["invoice_id"] = *in.InvoiceID
		}
		if in.PaymentMethod != nil {
			updates["payment_method"] = *in.PaymentMethod
		}
		if in.PaidAt != nil {
			updates["paid_at"] = *in.PaidAt
		}
		if err := tx.Model(&txn).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&txn, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func DeleteTransaction(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.First(&txn, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Transaction not found")
			}
			return err
		}
		if txn.Status == models.TransactionPaid {
			return NewConflict("Paid transactions belong to a payout and cannot be deleted").WithStatus(400)
		}
		return tx.Delete(&txn).Error
	})
}
