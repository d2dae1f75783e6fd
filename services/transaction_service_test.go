package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionSnapshotsRate(t *testing.T) {
	db := newTestDB(t)
	gold := createGroup(t, db, "Gold", 0.3)
	affiliate := createAffiliate(t, db, "Alice Smith", gold)
	referral := createReferral(t, db, affiliate, "lead@example.com")

	txn := createTransaction(t, db, referral, "1000.00")
	assert.Equal(t, int64(100000), txn.AmountCents)
	assert.Equal(t, int64(30000), txn.CommissionCents)
	assert.Equal(t, 0.3, txn.CommissionRate)
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.Equal(t, "lead@example.com", txn.CustomerEmail)
	assert.NotNil(t, txn.PaidAt)

	newRate := 0.5
	_, err := UpdatePartnerGroup(db, gold.ID, PartnerGroupInput{CommissionRate: &newRate})
	require.NoError(t, err)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, "id = ?", txn.ID).Error)
	assert.Equal(t, 0.3, stored.CommissionRate)
	assert.Equal(t, int64(30000), stored.CommissionCents)

	next := createTransaction(t, db, referral, "1000.00")
	assert.Equal(t, 0.5, next.CommissionRate)
	assert.Equal(t, int64(50000), next.CommissionCents)
}

func TestCreateTransactionRecordsConversion(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)
	referral := createReferral(t, db, affiliate, "lead@example.com")

	txn := createTransaction(t, db, referral, "12.345")
	assert.Equal(t, int64(1234), txn.AmountCents)

	var conversions []models.Conversion
	require.NoError(t, db.Where("referral_id = ?", referral.ID).Find(&conversions).Error)
	require.Len(t, conversions, 1)
	assert.Equal(t, models.EventPurchase, conversions[0].EventType)
	assert.Equal(t, models.ConversionApproved, conversions[0].Status)
	assert.Equal(t, int64(1234), conversions[0].AmountCents)

	assert.Equal(t, int64(1234), reloadAffiliate(t, db, affiliate.ID).TotalRevenueCents)
}

func TestCreateTransactionValidation(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateTransaction(db, CreateTransactionInput{Amount: decimal.NewFromInt(10)})
	assert.True(t, IsKind(err, KindValidation))

	_, err = CreateTransaction(db, CreateTransactionInput{ReferralID: uuid.New(), Amount: decimal.Zero})
	assert.True(t, IsKind(err, KindValidation))

	_, err = CreateTransaction(db, CreateTransactionInput{ReferralID: uuid.New(), Amount: decimal.NewFromInt(10)})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUpdateTransactionKeepsCommission(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)
	referral := createReferral(t, db, affiliate, "lead@example.com")
	txn := createTransaction(t, db, referral, "100.00")

	refunded := models.TransactionRefunded
	invoice := "INV-42"
	updated, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{Status: &refunded, InvoiceID: &invoice})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionRefunded, updated.Status)
	require.NotNil(t, updated.InvoiceID)
	assert.Equal(t, "INV-42", *updated.InvoiceID)
	assert.Equal(t, txn.AmountCents, updated.AmountCents)
	assert.Equal(t, txn.CommissionCents, updated.CommissionCents)
}

func TestUpdateTransactionRejectsPaid(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)
	referral := createReferral(t, db, affiliate, "lead@example.com")
	txn := createTransaction(t, db, referral, "100.00")

	paid := models.TransactionPaid
	_, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{Status: &paid})
	assert.True(t, IsKind(err, KindValidation))

	_, err = CreatePayout(db, CreatePayoutInput{AffiliateID: affiliate.ID, TransactionIDs: []uuid.UUID{txn.ID}})
	require.NoError(t, err)

	completed := models.TransactionCompleted
	_, err = UpdateTransaction(db, txn.ID, UpdateTransactionInput{Status: &completed})
	appErr := appErrorOf(t, err)
	assert.Equal(t, KindConflict, appErr.Kind)
	assert.Equal(t, 400, appErr.Status())

	err = DeleteTransaction(db, txn.ID)
	assert.Equal(t, 400, appErrorOf(t, err).Status())
}

func TestDeleteTransaction(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)
	referral := createReferral(t, db, affiliate, "lead@example.com")
	txn := createTransaction(t, db, referral, "100.00")

	require.NoError(t, DeleteTransaction(db, txn.ID))
	assert.True(t, IsKind(DeleteTransaction(db, txn.ID), KindNotFound))
}

func TestListTransactionsFilters(t *testing.T) {
	db := newTestDB(t)
	alice := createAffiliate(t, db, "Alice Smith", nil)
	bob := createAffiliate(t, db, "Bob Jones", nil)
	aliceRef := createReferral(t, db, alice, "a@example.com")
	bobRef := createReferral(t, db, bob, "b@example.com")
	createTransaction(t, db, aliceRef, "10.00")
	createTransaction(t, db, aliceRef, "20.00")
	createTransaction(t, db, bobRef, "30.00")

	all, err := ListTransactions(db, TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := ListTransactions(db, TransactionFilter{AffiliateID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Alice Smith", mine[0].Affiliate.User.FullName)

	byReferral, err := ListTransactions(db, TransactionFilter{ReferralID: &bobRef.ID})
	require.NoError(t, err)
	require.Len(t, byReferral, 1)
	assert.Equal(t, "b@example.com", byReferral[0].Referral.LeadEmail)
}
