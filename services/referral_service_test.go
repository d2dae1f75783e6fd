package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReferral(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)

	referral, err := CreateReferral(db, CreateReferralInput{
		AffiliateID: affiliate.ID,
		LeadName:    " Lead Person ",
		LeadEmail:   "Lead@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReferralPending, referral.Status)
	assert.Equal(t, "lead@example.com", referral.LeadEmail)
	assert.Equal(t, "Lead Person", referral.LeadName)
	assert.Equal(t, int64(1), reloadAffiliate(t, db, affiliate.ID).TotalLeads)

	_, err = CreateReferral(db, CreateReferralInput{AffiliateID: affiliate.ID, LeadName: "Again", LeadEmail: "lead@example.com"})
	assert.True(t, IsKind(err, KindConflict))

	_, err = CreateReferral(db, CreateReferralInput{AffiliateID: affiliate.ID, LeadName: "No Email"})
	assert.True(t, IsKind(err, KindValidation))

	_, err = CreateReferral(db, CreateReferralInput{AffiliateID: uuid.New(), LeadName: "Lost", LeadEmail: "lost@example.com"})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUpdateReferralStatus(t *testing.T) {
	db := newTestDB(t)
	affiliate := createAffiliate(t, db, "Alice Smith", nil)
	referral := createReferral(t, db, affiliate, "lead@example.com")

	notes := "duplicate signup"
	updated, err := UpdateReferralStatus(db, referral.ID, models.ReferralRejected, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralRejected, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	_, err = UpdateReferralStatus(db, referral.ID, models.ReferralStatus("LOST"), nil)
	assert.True(t, IsKind(err, KindValidation))

	_, err = UpdateReferralStatus(db, uuid.New(), models.ReferralApproved, nil)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListReferralsFilters(t *testing.T) {
	db := newTestDB(t)
	alice := createAffiliate(t, db, "Alice Smith", nil)
	bob := createAffiliate(t, db, "Bob Jones", nil)
	first := createReferral(t, db, alice, "a1@example.com")
	createReferral(t, db, alice, "a2@example.com")
	createReferral(t, db, bob, "b1@example.com")
	_, err := UpdateReferralStatus(db, first.ID, models.ReferralApproved, nil)
	require.NoError(t, err)

	all, err := ListReferrals(db, ReferralFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := ListReferrals(db, ReferralFilter{AffiliateID: &alice.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	approved := models.ReferralApproved
	got, err := ListReferrals(db, ReferralFilter{AffiliateID: &alice.ID, Status: &approved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestEnsureAffiliateProfile(t *testing.T) {
	db := newTestDB(t)

	t.Run("admin is rejected", func(t *testing.T) {
		admin := &models.User{ID: uuid.New(), FullName: "Root", Role: models.RoleAdmin}
		_, _, err := EnsureAffiliateProfile(db, admin)
		assert.Equal(t, 403, appErrorOf(t, err).Status())
	})

	t.Run("existing profile is returned", func(t *testing.T) {
		affiliate := createAffiliate(t, db, "Alice Smith", nil)
		profile, created, err := EnsureAffiliateProfile(db, &affiliate.User)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, affiliate.ReferralCode, profile.ReferralCode)
	})

	t.Run("missing profile is created", func(t *testing.T) {
		user := models.User{FullName: "Carol White", Email: "carol@example.com", Password: "x", Role: models.RoleAffiliate, Status: models.UserStatusActive}
		require.NoError(t, db.Create(&user).Error)

		profile, created, err := EnsureAffiliateProfile(db, &user)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Regexp(t, `^CAROLW-[A-Z0-9]{4}$`, profile.ReferralCode)

		again, created, err := EnsureAffiliateProfile(db, &user)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, profile.ID, again.ID)
	})

	t.Run("blank code is filled in", func(t *testing.T) {
		affiliate := createAffiliate(t, db, "Dan Brown", nil)
		require.NoError(t, db.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).Update("referral_code", "").Error)

		profile, created, err := EnsureAffiliateProfile(db, &affiliate.User)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Regexp(t, `^DANBRO-[A-Z0-9]{4}$`, profile.ReferralCode)
		assert.Equal(t, profile.ReferralCode, reloadAffiliate(t, db, affiliate.ID).ReferralCode)
	})
}
