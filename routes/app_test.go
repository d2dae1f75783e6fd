package routes

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t   *testing.T
	app *fiber.App
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{t: t, app: NewApp()}
}

func (e *testEnv) do(method, path string, body interface{}, headers map[string]string) response {
	e.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(e.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode, Body: map[string]interface{}{}}
	_ = json.NewDecoder(resp.Body).Decode(&out.Body)
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	resp := e.do("POST", "/api/v1/auth/login", fiber.Map{"email": email, "password": password}, nil)
	require.Equal(e.t, 200, resp.Status, "%v", resp.Body)
	token, _ := resp.Body["token"].(string)
	require.NotEmpty(e.t, token)
	return token
}

func (e *testEnv) adminToken() string {
	e.t.Helper()
	_, err := services.RegisterUser(database.DB, services.RegisterInput{
		FullName: "Root Admin",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     models.RoleAdmin,
	})
	require.NoError(e.t, err)
	return e.login("admin@example.com", "password123")
}

// activeAffiliate registers through the API, approves the account and logs in.
func (e *testEnv) activeAffiliate(admin, name, email string) (userID, affiliateID, token string) {
	e.t.Helper()
	resp := e.do("POST", "/api/v1/auth/register", fiber.Map{"name": name, "email": email, "password": "password123"}, nil)
	require.Equal(e.t, 201, resp.Status, "%v", resp.Body)
	user := resp.Body["user"].(map[string]interface{})
	userID = user["id"].(string)

	resp = e.do("PUT", "/api/v1/admin/users/"+userID+"/status", fiber.Map{"status": "ACTIVE"}, bearer(admin))
	require.Equal(e.t, 200, resp.Status, "%v", resp.Body)

	var affiliate models.Affiliate
	require.NoError(e.t, database.DB.Where("user_id = ?", userID).First(&affiliate).Error)
	return userID, affiliate.ID.String(), e.login(email, "password123")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do("GET", "/health", nil, nil)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "ok", resp.Body["status"])
}

func TestRegistrationAndApproval(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	resp := env.do("POST", "/api/v1/auth/register", fiber.Map{"name": "Jane Doe", "email": "jane@example.com", "password": "password123"}, nil)
	require.Equal(t, 201, resp.Status)
	user := resp.Body["user"].(map[string]interface{})
	assert.Equal(t, "PENDING", user["status"])
	assert.Regexp(t, `^JANEDO-[A-Z0-9]{4}$`, user["referral_code"])

	resp = env.do("POST", "/api/v1/auth/register", fiber.Map{"name": "Jane Doe", "email": "jane@example.com", "password": "password123"}, nil)
	assert.Equal(t, 409, resp.Status)

	resp = env.do("POST", "/api/v1/auth/register", fiber.Map{"name": "Short", "email": "short@example.com", "password": "123"}, nil)
	assert.Equal(t, 400, resp.Status)

	resp = env.do("POST", "/api/v1/auth/login", fiber.Map{"email": "jane@example.com", "password": "password123"}, nil)
	assert.Equal(t, 403, resp.Status)
	assert.Equal(t, "Your account is pending approval. Please wait for admin activation.", resp.Body["error"])

	resp = env.do("PUT", "/api/v1/admin/users/"+user["id"].(string)+"/status", fiber.Map{"status": "ACTIVE"}, bearer(admin))
	require.Equal(t, 200, resp.Status)

	token := env.login("jane@example.com", "password123")
	resp = env.do("GET", "/api/v1/auth/me", nil, bearer(token))
	require.Equal(t, 200, resp.Status)
	me := resp.Body["user"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", me["email"])
	assert.Equal(t, user["referral_code"], me["referral_code"])

	resp = env.do("GET", "/api/v1/affiliate/me", nil, bearer(token))
	require.Equal(t, 200, resp.Status)
	data := resp.Body["data"].(map[string]interface{})
	assert.Equal(t, 0.2, data["commission_rate"])
}

func TestSessionCookieIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	resp := env.do("GET", "/api/v1/admin/dashboard", nil, map[string]string{"Cookie": "auth-token=" + admin})
	assert.Equal(t, 200, resp.Status)
}

func TestRoleGuards(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	_, _, affiliate := env.activeAffiliate(admin, "Jane Doe", "jane@example.com")

	resp := env.do("GET", "/api/v1/admin/dashboard", nil, nil)
	assert.Equal(t, 401, resp.Status)
	assert.Equal(t, "Authentication required", resp.Body["error"])

	resp = env.do("GET", "/api/v1/admin/dashboard", nil, bearer("not-a-token"))
	assert.Equal(t, 401, resp.Status)

	resp = env.do("GET", "/api/v1/admin/dashboard", nil, bearer(affiliate))
	assert.Equal(t, 403, resp.Status)
	assert.Equal(t, "Access denied. Admin role required.", resp.Body["error"])

	resp = env.do("POST", "/api/v1/affiliate/generate-code", nil, bearer(admin))
	assert.Equal(t, 403, resp.Status)
	assert.Equal(t, "Access denied. Affiliate role required.", resp.Body["error"])

	resp = env.do("POST", "/api/v1/affiliate/generate-code", nil, bearer(affiliate))
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "Referral code already exists", resp.Body["message"])
}

func TestTrackingRequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	_, _, _ = env.activeAffiliate(admin, "Jane Doe", "jane@example.com")

	var affiliate models.Affiliate
	require.NoError(t, database.DB.First(&affiliate).Error)

	resp := env.do("POST", "/api/track/referral", fiber.Map{"referralCode": affiliate.ReferralCode}, nil)
	assert.Equal(t, 401, resp.Status)
	assert.Equal(t, "API key is required", resp.Body["error"])

	resp = env.do("POST", "/api/track/referral", fiber.Map{"referralCode": affiliate.ReferralCode}, map[string]string{"X-API-Key": "pk_wrong"})
	assert.Equal(t, 401, resp.Status)

	resp = env.do("POST", "/api/v1/admin/integration/generate-key", nil, bearer(admin))
	require.Equal(t, 200, resp.Status)
	key := map[string]string{"X-API-Key": resp.Body["publicKey"].(string)}

	resp = env.do("POST", "/api/track/referral", fiber.Map{"referralCode": affiliate.ReferralCode, "url": "https://shop.example.com/?ref=x"}, key)
	require.Equal(t, 200, resp.Status, "%v", resp.Body)
	assert.Equal(t, "Jane Doe", resp.Body["affiliate"].(map[string]interface{})["name"])

	resp = env.do("POST", "/api/track/referral", fiber.Map{"referralCode": "NOPE-0000"}, key)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "Invalid referral code", resp.Body["error"])

	resp = env.do("POST", "/api/track/conversion", fiber.Map{
		"referralCode":  affiliate.ReferralCode,
		"customerEmail": "buyer@example.com",
		"amount":        49.99,
		"orderId":       "order-1",
	}, key)
	require.Equal(t, 200, resp.Status, "%v", resp.Body)
	conversion := resp.Body["conversion"].(map[string]interface{})
	assert.Equal(t, 49.99, conversion["amount"])
	assert.Equal(t, "USD", conversion["currency"])

	stats := env.do("GET", "/api/v1/admin/dashboard", nil, bearer(admin)).Body["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["approved_referrals"])
	assert.EqualValues(t, 4999, stats["total_revenue_cents"])
}

func TestPayoutFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	_, affiliateID, _ := env.activeAffiliate(admin, "Jane Doe", "jane@example.com")
	auth := bearer(admin)

	resp := env.do("POST", "/api/v1/admin/partner-groups", fiber.Map{"name": "Gold", "commissionRate": 0.25}, auth)
	require.Equal(t, 201, resp.Status, "%v", resp.Body)
	groupID := resp.Body["group"].(map[string]interface{})["id"].(string)

	resp = env.do("POST", "/api/v1/admin/partner-groups", fiber.Map{"name": "Broken", "commissionRate": 25}, auth)
	assert.Equal(t, 400, resp.Status)

	resp = env.do("PUT", "/api/v1/admin/affiliates/"+affiliateID+"/partner-group", fiber.Map{"partnerGroupId": groupID}, auth)
	require.Equal(t, 200, resp.Status, "%v", resp.Body)

	resp = env.do("POST", "/api/v1/admin/referrals", fiber.Map{"affiliateId": affiliateID, "leadName": "Big Client", "leadEmail": "client@example.com"}, auth)
	require.Equal(t, 201, resp.Status, "%v", resp.Body)
	referralID := resp.Body["referral"].(map[string]interface{})["id"].(string)

	resp = env.do("POST", "/api/v1/admin/transactions", fiber.Map{"referralId": referralID, "amount": 1000}, auth)
	require.Equal(t, 201, resp.Status, "%v", resp.Body)
	txn := resp.Body["transaction"].(map[string]interface{})
	assert.EqualValues(t, 25000, txn["commission_cents"])
	txnID := txn["id"].(string)

	resp = env.do("DELETE", "/api/v1/admin/partner-groups/"+groupID, nil, auth)
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "Cannot delete partner group with 1 active member(s)", resp.Body["error"])

	resp = env.do("POST", "/api/v1/admin/payouts", fiber.Map{"affiliateId": affiliateID, "transactionIds": []string{}}, auth)
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "At least one commission is required", resp.Body["error"])

	resp = env.do("POST", "/api/v1/admin/payouts", fiber.Map{"affiliateId": affiliateID, "transactionIds": []string{txnID}}, auth)
	require.Equal(t, 201, resp.Status, "%v", resp.Body)
	payout := resp.Body["payout"].(map[string]interface{})
	assert.EqualValues(t, 25000, payout["amount_cents"])
	assert.Equal(t, "PENDING", payout["status"])
	payoutID := payout["id"].(string)

	resp = env.do("POST", "/api/v1/admin/payouts", fiber.Map{"affiliateId": affiliateID, "transactionIds": []string{txnID}}, auth)
	assert.Equal(t, 400, resp.Status)

	resp = env.do("DELETE", "/api/v1/admin/transactions/"+txnID, nil, auth)
	assert.Equal(t, 400, resp.Status)

	resp = env.do("PUT", "/api/v1/admin/payouts/"+payoutID, fiber.Map{"status": "COMPLETED"}, auth)
	require.Equal(t, 200, resp.Status, "%v", resp.Body)
	assert.Equal(t, "COMPLETED", resp.Body["payout"].(map[string]interface{})["status"])

	resp = env.do("PUT", "/api/v1/admin/payouts/"+payoutID, fiber.Map{"status": "PENDING"}, auth)
	assert.Equal(t, 400, resp.Status)

	resp = env.do("DELETE", "/api/v1/admin/payouts/"+payoutID, nil, auth)
	assert.Equal(t, 400, resp.Status)
}

func TestIntegrationSettings(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	auth := bearer(admin)

	resp := env.do("GET", "/api/v1/admin/integration", nil, auth)
	require.Equal(t, 200, resp.Status)
	assert.Nil(t, resp.Body["integration"])

	resp = env.do("PUT", "/api/v1/admin/integration", fiber.Map{"isActive": false}, auth)
	assert.Equal(t, 404, resp.Status)

	resp = env.do("POST", "/api/v1/admin/integration/generate-key", nil, auth)
	require.Equal(t, 200, resp.Status)
	first := resp.Body["publicKey"].(string)

	resp = env.do("POST", "/api/v1/admin/integration/generate-key", nil, auth)
	require.Equal(t, 200, resp.Status)
	assert.NotEqual(t, first, resp.Body["publicKey"])

	resp = env.do("PUT", "/api/v1/admin/integration", fiber.Map{"webhookUrl": "https://shop.example.com/hook", "config": fiber.Map{"cookieDays": 60}}, auth)
	require.Equal(t, 200, resp.Status, "%v", resp.Body)
	integration := resp.Body["integration"].(map[string]interface{})
	assert.Equal(t, "https://shop.example.com/hook", integration["webhook_url"])
}
