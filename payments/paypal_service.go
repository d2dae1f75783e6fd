package payments

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/refferq/referral_api/configs"
	"github.com/shopspring/decimal"
)

// PayPalClient sends affiliate payouts through the PayPal Payouts API.
type PayPalClient struct {
	clientID     string
	clientSecret string
	http         *resty.Client
	tokens       *tokenCache
}

type PayoutRequest struct {
	PayoutID      string
	ReceiverEmail string
	AmountCents   int64
	Currency      string
	Note          string
}

type payoutBatchResponse struct {
	BatchHeader struct {
		PayoutBatchID string `json:"payout_batch_id"`
		BatchStatus   string `json:"batch_status"`
	} `json:"batch_header"`
}

type paypalError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func NewPayPalClient(baseURL, clientID, clientSecret string) *PayPalClient {
	return &PayPalClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second),
		tokens:       newTokenCache(),
	}
}

// NewPayPalClientFromConfig returns nil when PayPal credentials are not set.
func NewPayPalClientFromConfig() *PayPalClient {
	clientID := config.Config("PAYPAL_CLIENT_ID")
	clientSecret := config.Config("PAYPAL_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return NewPayPalClient(config.ConfigDefault("PAYPAL_API_BASE_URL", "https://api-m.sandbox.paypal.com"), clientID, clientSecret)
}

func (p *PayPalClient) fetchToken(ctx context.Context) (*TokenResponse, error) {
	var tokenResp TokenResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tokenResp).
		Post("/v1/oauth2/token")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to get access token, status: %s", resp.Status())
	}
	return &tokenResp, nil
}

// SendPayout creates a single-item payout batch and returns its batch id.
// The payout id doubles as sender_batch_id so PayPal rejects a retry of the
// same payout.
func (p *PayPalClient) SendPayout(ctx context.Context, req PayoutRequest) (string, error) {
	if req.ReceiverEmail == "" {
		return "", fmt.Errorf("paypal payout %s: receiver email is required", req.PayoutID)
	}
	accessToken, err := p.tokens.get(ctx, p.fetchToken)
	if err != nil {
		return "", err
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	payload := map[string]interface{}{
		"sender_batch_header": map[string]string{
			"sender_batch_id": req.PayoutID,
			"email_subject":   "You have a payout!",
		},
		"items": []map[string]interface{}{
			{
				"recipient_type": "EMAIL",
				"receiver":       req.ReceiverEmail,
				"note":           req.Note,
				"sender_item_id": req.PayoutID,
				"amount": map[string]string{
					"currency": currency,
					"value":    decimal.New(req.AmountCents, -2).StringFixed(2),
				},
			},
		},
	}

	var batch payoutBatchResponse
	var apiErr paypalError
	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(payload).
		SetResult(&batch).
		SetError(&apiErr).
		Post("/v1/payments/payouts")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		p.tokens.invalidate()
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("failed to create payout: %s %s", apiErr.Name, apiErr.Message)
	}
	return batch.BatchHeader.PayoutBatchID, nil
}
