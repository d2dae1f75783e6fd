package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createGroup(t *testing.T, db *gorm.DB, name string, rate float64) *models.PartnerGroup {
	t.Helper()
	group, err := CreatePartnerGroup(db, PartnerGroupInput{Name: &name, CommissionRate: &rate})
	require.NoError(t, err)
	return group
}

// createAffiliate registers an affiliate and activates its account.
func createAffiliate(t *testing.T, db *gorm.DB, name string, group *models.PartnerGroup) *models.Affiliate {
	t.Helper()
	user, err := RegisterUser(db, RegisterInput{
		FullName: name,
		Email:    uuid.NewString()[:8] + "@example.com",
		Password: "password123",
		Role:     models.RoleAffiliate,
	})
	require.NoError(t, err)
	require.NoError(t, SetUserStatus(db, user.ID, models.UserStatusActive))

	if group != nil {
		_, err := AssignPartnerGroup(db, user.Affiliate.ID, &group.ID)
		require.NoError(t, err)
	}

	var affiliate models.Affiliate
	require.NoError(t, db.Preload("User").Preload("PartnerGroup").First(&affiliate, "id = ?", user.Affiliate.ID).Error)
	return &affiliate
}

func createReferral(t *testing.T, db *gorm.DB, affiliate *models.Affiliate, email string) *models.Referral {
	t.Helper()
	referral, err := CreateReferral(db, CreateReferralInput{
		AffiliateID: affiliate.ID,
		LeadName:    "Lead " + email,
		LeadEmail:   email,
	})
	require.NoError(t, err)
	return referral
}

func createTransaction(t *testing.T, db *gorm.DB, referral *models.Referral, amount string) *models.Transaction {
	t.Helper()
	txn, err := CreateTransaction(db, CreateTransactionInput{
		ReferralID: referral.ID,
		Amount:     decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return txn
}

func reloadAffiliate(t *testing.T, db *gorm.DB, id uuid.UUID) models.Affiliate {
	t.Helper()
	var affiliate models.Affiliate
	require.NoError(t, db.First(&affiliate, "id = ?", id).Error)
	return affiliate
}

func appErrorOf(t *testing.T, err error) *AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*AppError)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	return appErr
}
