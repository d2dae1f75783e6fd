package tracker

import (
	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const clientLocal = "refferq_tracker"

type MiddlewareConfig struct {
	APIKey     string
	APIURL     string
	HTTPClient *resty.Client
	Logger     *zerolog.Logger
	TTLDays    int
}

// Middleware gives Go host sites what the browser snippet gives HTML pages:
// GET requests carrying a referral parameter are reported as clicks and the
// code is stored in the visitor's cookie. The per-request client is
// available to later handlers through FromContext.
func Middleware(cfg MiddlewareConfig) fiber.Handler {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resty.New()
	}
	return func(c *fiber.Ctx) error {
		client, err := New(Options{
			APIKey:     cfg.APIKey,
			APIURL:     cfg.APIURL,
			Store:      NewFiberStore(c),
			HTTPClient: cfg.HTTPClient,
			Logger:     cfg.Logger,
			TTLDays:    cfg.TTLDays,
		})
		if err != nil {
			return err
		}
		c.Locals(clientLocal, client)

		if c.Method() == fiber.MethodGet {
			pageURL := c.BaseURL() + c.OriginalURL()
			if _, ok := ReferralCodeFromURL(pageURL); ok {
				client.Init(c.UserContext(), Page{
					URL:       pageURL,
					Referrer:  c.Get(fiber.HeaderReferer),
					UserAgent: c.Get(fiber.HeaderUserAgent),
				})
			}
		}
		return c.Next()
	}
}

// FromContext returns the client installed by Middleware, or nil.
func FromContext(c *fiber.Ctx) *Client {
	client, _ := c.Locals(clientLocal).(*Client)
	return client
}
