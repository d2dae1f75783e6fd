package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errNoCommissions       = NewValidation("At least one commission is required")
	errIneligibleForPayout = NewConflict("Some commissions are invalid or not eligible for payout").WithStatus(400)
)

type CreatePayoutInput struct {
	AffiliateID    uuid.UUID
	TransactionIDs []uuid.UUID
	Method         string
	Notes          *string
	CreatedBy      *uuid.UUID
}

type UpdatePayoutInput struct {
	Status            *models.PayoutStatus
	Method            *string
	Notes             *string
	ProviderReference *string
}

// payoutTransitions lists the statuses reachable from each non-terminal status.
var payoutTransitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutPending:    {models.PayoutProcessing, models.PayoutCompleted, models.PayoutFailed},
	models.PayoutProcessing: {models.PayoutCompleted, models.PayoutFailed},
}

func CanTransitionPayout(from, to models.PayoutStatus) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreatePayout bundles COMPLETED transactions of one affiliate into a PENDING
// payout and marks them PAID. Either every listed transaction is paid out or
// nothing changes.
func CreatePayout(db *gorm.DB, in CreatePayoutInput) (*models.Payout, error) {
	ids := dedupeIDs(in.TransactionIDs)
	if len(ids) == 0 {
		return nil, errNoCommissions
	}
	method := in.Method
	if method == "" {
		method = models.PayoutMethodBankTransfer
	}

	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		var affiliate models.Affiliate
		if err := tx.First(&affiliate, "id = ?", in.AffiliateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Affiliate not found")
			}
			return err
		}

		var transactions []models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND affiliate_id = ? AND status = ?", ids, in.AffiliateID, models.TransactionCompleted).
			Find(&transactions).Error; err != nil {
			return err
		}
		if len(transactions) != len(ids) {
			return errIneligibleForPayout
		}

		var total int64
		for _, t := range transactions {
			total += t.CommissionCents
		}

		payout = models.Payout{
			AffiliateID:     in.AffiliateID,
			AmountCents:     total,
			CommissionCount: len(transactions),
			Status:          models.PayoutPending,
			Method:          method,
			Notes:           in.Notes,
			CreatedBy:       in.CreatedBy,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		// Guarded on status so a concurrent payout over the same rows
		// cannot mark them twice.
		result := tx.Model(&models.Transaction{}).
			Where("id IN ? AND affiliate_id = ? AND status = ?", ids, in.AffiliateID, models.TransactionCompleted).
			Updates(map[string]interface{}{
				"status":     models.TransactionPaid,
				"payout_id":  payout.ID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return errIneligibleForPayout
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("payout_id", payout.ID.String()).
		Str("affiliate_id", payout.AffiliateID.String()).
		Int64("amount_cents", payout.AmountCents).
		Int("commission_count", payout.CommissionCount).
		Msg("✅ Payout created")
	return &payout, nil
}

// UpdatePayout applies a status change and/or edits method and notes.
func UpdatePayout(db *gorm.DB, id uuid.UUID, in UpdatePayoutInput) (*models.Payout, error) {
	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Payout not found")
			}
			return err
		}

		if in.Status != nil && *in.Status != payout.Status {
			if !in.Status.Valid() {
				return NewValidation("Invalid payout status")
			}
			if payout.Status.Terminal() {
				return NewConflict("Payout is already " + string(payout.Status)).WithStatus(400)
			}
			if !CanTransitionPayout(payout.Status, *in.Status) {
				return NewValidation("Cannot move payout from " + string(payout.Status) + " to " + string(*in.Status))
			}
			payout.Status = *in.Status
			if payout.Status == models.PayoutCompleted {
				now := time.Now()
				payout.ProcessedAt = &now
			}
		}
		if in.Method != nil {
			payout.Method = *in.Method
		}
		if in.Notes != nil {
			payout.Notes = in.Notes
		}
		if in.ProviderReference != nil {
			payout.ProviderReference = in.ProviderReference
		}
		return tx.Omit(clause.Associations).Save(&payout).Error
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// DeletePayout removes a PENDING or FAILED payout and returns its
// transactions to COMPLETED so they can be paid out again.
func DeletePayout(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var payout models.Payout
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Payout not found")
			}
			return err
		}
		if payout.Status != models.PayoutPending && payout.Status != models.PayoutFailed {
			return NewConflict("Only pending or failed payouts can be deleted").WithStatus(400)
		}

		if err := tx.Model(&models.Transaction{}).
			Where("payout_id = ? AND status = ?", payout.ID, models.TransactionPaid).
			Updates(map[string]interface{}{
				"status":     models.TransactionCompleted,
				"payout_id":  nil,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return tx.Delete(&payout).Error
	})
}

func GetPayout(db *gorm.DB, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := db.Preload("Affiliate.User").First(&payout, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Payout not found")
		}
		return nil, err
	}
	return &payout, nil
}

func ListPayouts(db *gorm.DB, affiliateID *uuid.UUID) ([]models.Payout, error) {
	query := db.Preload("Affiliate.User").Order("created_at desc")
	if affiliateID != nil {
		query = query.Where("affiliate_id = ?", *affiliateID)
	}
	var payouts []models.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// ListStalePayouts returns PENDING payouts created before now-olderThan.
func ListStalePayouts(db *gorm.DB, olderThan time.Duration, now time.Time) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := db.Preload("Affiliate.User").
		Where("status = ? AND created_at < ?", models.PayoutPending, now.Add(-olderThan)).
		Order("created_at asc").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
