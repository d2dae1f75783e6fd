package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayPal struct {
	tokenCalls  int32
	payoutCalls int32
	payoutCode  int
	lastPayout  map[string]interface{}
	lastAuth    string
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"token-1","expires_in":32400}`)
	})
	mux.HandleFunc("/v1/payments/payouts", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.payoutCalls, 1)
		f.lastAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&f.lastPayout)
		w.Header().Set("Content-Type", "application/json")
		code := f.payoutCode
		if code == 0 {
			code = http.StatusCreated
		}
		w.WriteHeader(code)
		if code == http.StatusCreated {
			_, _ = io.WriteString(w, `{"batch_header":{"payout_batch_id":"BATCH-9","batch_status":"PENDING"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"name":"AUTHENTICATION_FAILURE","message":"Token expired"}`)
	})
	return mux
}

func newTestPayPal(t *testing.T) (*fakePayPal, *PayPalClient) {
	t.Helper()
	fake := &fakePayPal{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return fake, NewPayPalClient(srv.URL, "client-id", "client-secret")
}

func TestSendPayout(t *testing.T) {
	fake, client := newTestPayPal(t)

	batchID, err := client.SendPayout(context.Background(), PayoutRequest{
		PayoutID:      "payout-1",
		ReceiverEmail: "alice@example.com",
		AmountCents:   2999,
		Note:          "Affiliate commission payout",
	})
	require.NoError(t, err)
	assert.Equal(t, "BATCH-9", batchID)
	assert.Equal(t, "Bearer token-1", fake.lastAuth)

	header := fake.lastPayout["sender_batch_header"].(map[string]interface{})
	assert.Equal(t, "payout-1", header["sender_batch_id"])
	items := fake.lastPayout["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "alice@example.com", item["receiver"])
	amount := item["amount"].(map[string]interface{})
	assert.Equal(t, "29.99", amount["value"])
	assert.Equal(t, "USD", amount["currency"])
}

func TestSendPayoutReusesToken(t *testing.T) {
	fake, client := newTestPayPal(t)
	req := PayoutRequest{PayoutID: "p", ReceiverEmail: "alice@example.com", AmountCents: 100}

	for i := 0; i < 3; i++ {
		_, err := client.SendPayout(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.tokenCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.payoutCalls))
}

func TestSendPayoutUnauthorizedDropsToken(t *testing.T) {
	fake, client := newTestPayPal(t)
	fake.payoutCode = http.StatusUnauthorized
	req := PayoutRequest{PayoutID: "p", ReceiverEmail: "alice@example.com", AmountCents: 100}

	_, err := client.SendPayout(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token expired")

	fake.payoutCode = http.StatusCreated
	_, err = client.SendPayout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.tokenCalls))
}

func TestSendPayoutRequiresReceiver(t *testing.T) {
	fake, client := newTestPayPal(t)

	_, err := client.SendPayout(context.Background(), PayoutRequest{PayoutID: "p", AmountCents: 100})
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&fake.tokenCalls))
}

func TestSendPayoutBadCredentials(t *testing.T) {
	fake := &fakePayPal{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := NewPayPalClient(srv.URL, "client-id", "wrong")

	_, err := client.SendPayout(context.Background(), PayoutRequest{PayoutID: "p", ReceiverEmail: "alice@example.com"})
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&fake.payoutCalls))
}

func TestTokenCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := newTokenCache()
	cache.now = func() time.Time { return now }

	var fetches int
	fetch := func(context.Context) (*TokenResponse, error) {
		fetches++
		return &TokenResponse{AccessToken: "t", ExpiresIn: 3600}, nil
	}

	_, err := cache.get(context.Background(), fetch)
	require.NoError(t, err)
	now = now.Add(3600*time.Second - tokenRefreshMargin - time.Second)
	_, err = cache.get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	now = now.Add(2 * time.Second)
	_, err = cache.get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)

	_, err = cache.get(context.Background(), func(context.Context) (*TokenResponse, error) {
		return nil, errors.New("unused")
	})
	assert.NoError(t, err)
}
