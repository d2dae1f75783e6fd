package payments

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokenRefreshMargin is subtracted from the provider's expiry so a cached
// token is never used in its last minutes.
const tokenRefreshMargin = 300 * time.Second

type tokenCache struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
	now    func() time.Time
}

func newTokenCache() *tokenCache {
	return &tokenCache{now: time.Now}
}

func (c *tokenCache) get(ctx context.Context, fetch func(context.Context) (*TokenResponse, error)) (string, error) {
	c.mu.RLock()
	if c.token != "" && c.now().Before(c.expiry) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}

	log.Debug().Msg("Fetching new PayPal access token...")
	resp, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	c.token = resp.AccessToken
	c.expiry = c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenRefreshMargin)
	return c.token, nil
}

func (c *tokenCache) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
