package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieConfig controls the attributes shared by both session cookies.
type CookieConfig struct {
	// Secure is on in production; local development runs over plain http.
	Secure bool
}

func (c CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) setTokens(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, c.cookie(AccessCookie, pair.AccessToken, pair.AccessExpiresIn))
	http.SetCookie(w, c.cookie(RefreshCookie, pair.RefreshToken, pair.RefreshExpiresIn))
}

func (c CookieConfig) setAccess(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, c.cookie(AccessCookie, token, ttl))
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := c.cookie(name, "", 0)
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
