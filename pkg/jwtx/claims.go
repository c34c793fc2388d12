package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. The refresh TTL also bounds how long the
// authoritative copy sits in the cache.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType separates access tokens from refresh tokens. They are signed
// with different secrets already, the claim makes a mix-up fail loudly
// instead of relying on that alone.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims are the JWT claims carried by both token kinds. The subject is the
// user ID.
type Claims struct {
	jwt.RegisteredClaims

	Type TokenType `json:"typ"`
}

// NewClaims builds claims for subject valid from now for ttl.
func NewClaims(subject string, typ TokenType, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Type: typ,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// tokens minted for the same user in the same second still differ because
// of it.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateType rejects a token of the wrong kind.
func (c *Claims) ValidateType(want TokenType) error {
	if c.Type != want {
		return ErrTokenType
	}
	return nil
}
