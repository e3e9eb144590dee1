// Package session remembers the viewer's last successful verification
// in a signed cookie so the site can skip straight to requesting gated
// data instead of re-prompting. The cookie is a UI hint only; the
// server re-validates the stored access state on every privileged read.
package session

import (
	"net/http"
	"time"

	"github.com/rigaestates/listings-api/internal/platform/auth"
)

type Cache struct {
	cookieName string
	secret     string
	secure     bool
	now        func() time.Time
}

type Option func(*Cache)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithSecure marks the cookie Secure; on in production.
func WithSecure(secure bool) Option {
	return func(c *Cache) { c.secure = secure }
}

func New(cookieName, secret string, opts ...Option) *Cache {
	c := &Cache{
		cookieName: cookieName,
		secret:     secret,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Remember stores the grant (email + expiry) in the viewer's browser.
func (c *Cache) Remember(w http.ResponseWriter, email string, validUntil time.Time) error {
	token, err := auth.NewRememberToken(email, c.secret, validUntil)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  validUntil,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Hint returns the remembered email when the cached grant has not yet
// expired. An absent, malformed or expired cookie yields ok=false; the
// caller then shows the request form instead of fetching gated data.
func (c *Cache) Hint(r *http.Request) (email string, ok bool) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims, err := auth.Parse(cookie.Value, c.secret)
	if err != nil {
		return "", false
	}
	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return "", false
	}
	return claims.Email, true
}

// Clear drops the remembered grant.
func (c *Cache) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
