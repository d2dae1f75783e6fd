package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// referralParams are checked in order; the first non-empty one wins.
var referralParams = []string{"ref", "referral", "affiliate"}

const errNoReferralCode = "No referral code"

type Options struct {
	APIKey string
	// APIURL is the tracking server origin, e.g. https://app.example.com.
	APIURL     string
	Store      AttributionStore
	HTTPClient *resty.Client
	Logger     *zerolog.Logger
	TTLDays    int
}

type Client struct {
	apiKey  string
	apiURL  string
	store   AttributionStore
	http    *resty.Client
	log     zerolog.Logger
	ttlDays int
	now     func() time.Time
}

// Page describes the page view the client is initialised on.
type Page struct {
	URL       string
	Referrer  string
	UserAgent string
}

type ConversionOptions struct {
	Email    string
	Name     string
	Amount   decimal.Decimal
	Currency string
	OrderID  string
	Metadata map[string]interface{}
	URL      string
}

type AffiliateInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type ConversionInfo struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Result mirrors the server's JSON answer. Local failures are reported the
// same way with Success false.
type Result struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	Affiliate    *AffiliateInfo  `json:"affiliate,omitempty"`
	Conversion   *ConversionInfo `json:"conversion,omitempty"`
	ReferralCode string          `json:"-"`
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("tracker: API key is required")
	}
	if opts.Store == nil {
		return nil, errors.New("tracker: attribution store is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = resty.New().SetTimeout(10 * time.Second)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	ttl := opts.TTLDays
	if ttl <= 0 {
		ttl = DefaultTTLDays
	}
	return &Client{
		apiKey:  opts.APIKey,
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		store:   opts.Store,
		http:    httpClient,
		log:     logger.With().Str("component", "tracker").Logger(),
		ttlDays: ttl,
		now:     time.Now,
	}, nil
}

// ReferralCodeFromURL returns the referral code carried by rawURL, if any.
func ReferralCodeFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	query := u.Query()
	for _, param := range referralParams {
		if v := query.Get(param); v != "" {
			return v, true
		}
	}
	return "", false
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*Result, error) {
	var result Result
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(c.apiURL + path)
	if err != nil {
		return nil, err
	}
	if !result.Success && result.Error == "" {
		result.Error = resp.Status()
	}
	return &result, nil
}

// Init handles a page view. A referral code in the URL is reported as a click
// and stored once the server accepts it; otherwise the stored code, if any,
// is returned without contacting the server.
func (c *Client) Init(ctx context.Context, page Page) Result {
	code, ok := ReferralCodeFromURL(page.URL)
	if !ok {
		if stored, found := c.store.Get(CookieName); found {
			c.log.Debug().Str("referral_code", stored).Msg("Stored referral code found")
			return Result{Success: true, ReferralCode: stored}
		}
		return Result{Success: false, Error: errNoReferralCode}
	}

	c.log.Debug().Str("referral_code", code).Msg("Referral code detected")
	result, err := c.post(ctx, "/api/track/referral", map[string]interface{}{
		"referralCode": code,
		"url":          page.URL,
		"referrer":     page.Referrer,
		"userAgent":    page.UserAgent,
		"timestamp":    c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.log.Error().Err(err).Str("referral_code", code).Msg("Error tracking referral")
		return Result{Success: false, Error: err.Error(), ReferralCode: code}
	}
	result.ReferralCode = code
	if !result.Success {
		c.log.Error().Str("referral_code", code).Str("error", result.Error).Msg("Failed to track referral")
		return *result
	}

	if err := c.store.Set(CookieName, code, c.ttlDays); err != nil {
		c.log.Error().Err(err).Msg("Failed to store referral code")
	}
	return *result
}

// TrackConversion reports a purchase for the stored referral code. The code
// is cleared only when the server accepts the conversion.
func (c *Client) TrackConversion(ctx context.Context, opts ConversionOptions) Result {
	code, ok := c.store.Get(CookieName)
	if !ok || code == "" {
		c.log.Warn().Msg("No referral code found in cookies")
		return Result{Success: false, Error: errNoReferralCode}
	}

	currency := opts.Currency
	if currency == "" {
		currency = "USD"
	}
	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	result, err := c.post(ctx, "/api/track/conversion", map[string]interface{}{
		"referralCode":  code,
		"customerEmail": opts.Email,
		"customerName":  opts.Name,
		"amount":        json.Number(opts.Amount.String()),
		"currency":      currency,
		"orderId":       opts.OrderID,
		"metadata":      metadata,
		"url":           opts.URL,
		"timestamp":     c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.log.Error().Err(err).Str("referral_code", code).Msg("Error tracking conversion")
		return Result{Success: false, Error: err.Error(), ReferralCode: code}
	}
	result.ReferralCode = code
	if !result.Success {
		c.log.Error().Str("referral_code", code).Str("error", result.Error).Msg("Failed to track conversion")
		return *result
	}

	if err := c.store.Delete(CookieName); err != nil {
		c.log.Error().Err(err).Msg("Failed to clear referral code")
	}
	return *result
}

func (c *Client) GetReferralCode() (string, bool) {
	return c.store.Get(CookieName)
}

func (c *Client) ClearReferralCode() error {
	return c.store.Delete(CookieName)
}
