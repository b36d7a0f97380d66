package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "auth_token"

// CookieConfig is injected at construction.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// CookieTransport moves the session token between the client and the server.
// The cookie is HttpOnly and SameSite=Strict; Secure follows the config.
type CookieTransport struct {
	secure bool
	maxAge int
}

func NewCookieTransport(cfg CookieConfig) *CookieTransport {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &CookieTransport{secure: cfg.Secure, maxAge: int(ttl / time.Second)}
}

// Write attaches token to the response.
func (t *CookieTransport) Write(c echo.Context, token string) {
	c.SetCookie(t.cookie(token, t.maxAge))
}

// Clear instructs the client to drop the cookie immediately.
func (t *CookieTransport) Clear(c echo.Context) {
	c.SetCookie(t.cookie("", -1))
}

// Read returns the token sent by the client. A missing or empty cookie is
// reported through ok, never as an error.
func (t *CookieTransport) Read(c echo.Context) (token string, ok bool) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (t *CookieTransport) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
