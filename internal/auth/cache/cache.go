// Package cache is the key/value store that backs refresh sessions and
// password reset grants. Drivers live under drivers/.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a string key/value store with per-key expiry.
type Cache interface {
	// Set stores val under key, replacing any previous value. A ttl of zero
	// means no expiry.
	Set(ctx context.Context, key, val string, ttl time.Duration) error

	// Get returns the value or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteIfEquals removes key only while it still holds val and reports
	// whether it did.
	DeleteIfEquals(ctx context.Context, key, val string) (bool, error)

	// Incr adds one to the counter at key and returns the new value. A
	// counter created by the call expires after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

const (
	refreshTokenPrefix  = "refresh_token:"
	passwordResetPrefix = "password_reset:"
	otpAttemptsPrefix   = "otp_attempts:"
)

// RefreshTokenKey is where a user's current refresh token lives.
func RefreshTokenKey(userID string) string { return refreshTokenPrefix + userID }

// PasswordResetKey is where an outstanding reset grant for email lives.
func PasswordResetKey(email string) string { return passwordResetPrefix + email }

// OTPAttemptsKey counts wrong guesses against the live code for email.
func OTPAttemptsKey(purpose, email string) string {
	return otpAttemptsPrefix + purpose + ":" + email
}
