package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret NewHS256 accepts.
const MinSecretLength = 16

var (
	_ Signer   = (*HS256)(nil)
	_ Verifier = (*HS256)(nil)
)

// HS256 signs and verifies one kind of token with one shared secret. Access
// and refresh tokens each get their own instance so a leaked access secret
// cannot mint refresh tokens.
type HS256 struct {
	secret []byte
	typ    TokenType
	opts   VerifyOptions
}

// NewHS256 returns an HS256 signer/verifier for tokens of type typ.
func NewHS256(secret []byte, typ TokenType, opts VerifyOptions) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256{secret: secret, typ: typ, opts: opts}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign signs c. Claims of a different token type are refused.
func (h *HS256) Sign(c Claims) (string, error) {
	if err := c.ValidateType(h.typ); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(h.secret)
}

// Verify checks the signature, exp/nbf, issuer and token type.
func (h *HS256) Verify(token string) (Claims, error) {
	var c Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(h.opts.Leeway),
	}
	if h.opts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.opts.Issuer))
	}

	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := c.ValidateType(h.typ); err != nil {
		return Claims{}, err
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidClaim)
	}
	return c, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
