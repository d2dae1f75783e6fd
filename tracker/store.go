// Package tracker is the Go counterpart of public/scripts/tracker.js. It
// captures referral codes from landing URLs, keeps them in a cookie and
// reports clicks and conversions to the tracking API.
package tracker

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	CookieName     = "refferq_ref"
	DefaultTTLDays = 30
)

// AttributionStore keeps the referral code between visits.
type AttributionStore interface {
	Set(name, value string, ttlDays int) error
	Get(name string) (string, bool)
	Delete(name string) error
}

func expiry(now time.Time, ttlDays int) time.Time {
	return now.Add(time.Duration(ttlDays) * 24 * time.Hour)
}

// JarStore keeps cookies in an http.CookieJar scoped to one site.
type JarStore struct {
	jar  http.CookieJar
	site *url.URL
	now  func() time.Time
}

func NewJarStore(jar http.CookieJar, siteURL string) (*JarStore, error) {
	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}
	return &JarStore{jar: jar, site: site, now: time.Now}, nil
}

func (s *JarStore) Set(name, value string, ttlDays int) error {
	cookie := &http.Cookie{
		Name:    name,
		Value:   value,
		Path:    "/",
		Expires: expiry(s.now(), ttlDays),
	}
	if ttlDays <= 0 {
		cookie.MaxAge = -1
	}
	s.jar.SetCookies(s.site, []*http.Cookie{cookie})
	return nil
}

// Get returns the first cookie named name.
func (s *JarStore) Get(name string) (string, bool) {
	for _, cookie := range s.jar.Cookies(s.site) {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}
	return "", false
}

func (s *JarStore) Delete(name string) error {
	s.jar.SetCookies(s.site, []*http.Cookie{{Name: name, Path: "/", MaxAge: -1}})
	return nil
}

// FiberStore reads the request cookie and writes response cookies on a
// single request. Writes made during the request are visible to later reads.
type FiberStore struct {
	c       *fiber.Ctx
	now     func() time.Time
	pending map[string]*string
}

func NewFiberStore(c *fiber.Ctx) *FiberStore {
	return &FiberStore{c: c, now: time.Now, pending: map[string]*string{}}
}

func (s *FiberStore) Set(name, value string, ttlDays int) error {
	if ttlDays <= 0 {
		return s.Delete(name)
	}
	s.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiry(s.now(), ttlDays),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	v := value
	s.pending[name] = &v
	return nil
}

func (s *FiberStore) Get(name string) (string, bool) {
	if v, ok := s.pending[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	value := s.c.Cookies(name)
	return value, value != ""
}

func (s *FiberStore) Delete(name string) error {
	s.c.Cookie(&fiber.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	s.pending[name] = nil
	return nil
}
