package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/aussiebroadwan/shopfront/internal/auth/http"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

func oneGuessPerMinute() httpx.RateLimits {
	limits := generous()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	return limits
}

func guess(i int) authsdk.VerifyOTPRequest {
	return authsdk.VerifyOTPRequest{Email: "victim@example.com", OTP: fmt.Sprintf("%06d", i), Purpose: authsdk.PurposeReset}
}

func TestVerifyOTPRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newServer(t, oneGuessPerMinute())

	first := s.postForwarded(t, "/api/auth/verify-otp", guess(0), "203.0.113.0")
	require.Equal(t, http.StatusBadRequest, first.StatusCode)

	for i := 1; i < 10; i++ {
		resp := s.postForwarded(t, "/api/auth/verify-otp", guess(i), fmt.Sprintf("203.0.113.%d", i))
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "guess %d", i)
		require.Equal(t, "rate_limit_exceeded", decodeError(t, resp).Error)
	}
}

func TestVerifyOTPRateLimitBehindTrustedProxy(t *testing.T) {
	s := newServer(t, oneGuessPerMinute(), func(o *httpapi.Options) {
		o.TrustedProxies = []netip.Prefix{
			netip.MustParsePrefix("127.0.0.0/8"),
			netip.MustParsePrefix("::1/128"),
		}
	})

	require.Equal(t, http.StatusBadRequest, s.postForwarded(t, "/api/auth/verify-otp", guess(0), "198.51.100.1").StatusCode)
	require.Equal(t, http.StatusTooManyRequests, s.postForwarded(t, "/api/auth/verify-otp", guess(1), "198.51.100.1").StatusCode)
	require.Equal(t, http.StatusBadRequest, s.postForwarded(t, "/api/auth/verify-otp", guess(2), "198.51.100.2").StatusCode,
		"a second client behind the proxy has its own bucket")
}

func TestVerifyOTPAttemptCap(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	s.signup(t, "victim@example.com", "secret123")
	c := s.client(t)

	_, err := c.RequestOTP(ctx, authsdk.RequestOTPRequest{Email: "victim@example.com", Purpose: authsdk.PurposeReset})
	require.NoError(t, err)
	code := s.lastCode()

	wrong := 0
	for i := 0; wrong < 5; i++ {
		if fmt.Sprintf("%06d", i) == code {
			continue
		}
		_, err := c.VerifyOTP(ctx, guess(i))
		require.ErrorIs(t, err, authsdk.ErrInvalidOTP)
		wrong++
	}

	_, err = c.VerifyOTP(ctx, authsdk.VerifyOTPRequest{Email: "victim@example.com", OTP: code, Purpose: authsdk.PurposeReset})
	require.ErrorIs(t, err, authsdk.ErrTooManyAttempts)

	_, err = c.RequestOTP(ctx, authsdk.RequestOTPRequest{Email: "victim@example.com", Purpose: authsdk.PurposeReset})
	require.NoError(t, err)
	resp, err := c.VerifyOTP(ctx, authsdk.VerifyOTPRequest{Email: "victim@example.com", OTP: s.lastCode(), Purpose: authsdk.PurposeReset})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ResetToken)
}

func TestResetPasswordWrongTokenKeepsGrant(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	s.signup(t, "owner@example.com", "secret123")
	c := s.client(t)

	_, err := c.RequestOTP(ctx, authsdk.RequestOTPRequest{Email: "owner@example.com", Purpose: authsdk.PurposeReset})
	require.NoError(t, err)
	verified, err := c.VerifyOTP(ctx, authsdk.VerifyOTPRequest{Email: "owner@example.com", OTP: s.lastCode(), Purpose: authsdk.PurposeReset})
	require.NoError(t, err)

	resp := s.post(t, "/api/auth/reset-password", authsdk.ResetPasswordRequest{
		Email: "owner@example.com", NewPassword: "attacker1", ResetToken: "garbage",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_reset_token", decodeError(t, resp).Error)

	_, err = c.ResetPassword(ctx, authsdk.ResetPasswordRequest{
		Email: "owner@example.com", NewPassword: "newpass456", ResetToken: verified.ResetToken,
	})
	require.NoError(t, err)
}
