package http_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

func TestSignupFlow(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	c := s.client(t)

	msg, err := c.RequestOTP(ctx, authsdk.RequestOTPRequest{Email: "Alice@Example.com ", Purpose: authsdk.PurposeVerify})
	require.NoError(t, err)
	require.Equal(t, "OTP sent to alice@example.com", msg.Message)

	resp, err := c.Signup(ctx, authsdk.SignupRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		OTP:      s.lastCode(),
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", resp.User.Email)
	require.Equal(t, "customer", resp.User.Role)
	require.NotEmpty(t, resp.User.ID)

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, profile.ID)
}

func TestSignupSetsSessionCookies(t *testing.T) {
	s := newServer(t, generous())

	s.post(t, "/api/auth/request-otp", authsdk.RequestOTPRequest{Email: "bob@example.com", Purpose: "verify"})
	resp := s.post(t, "/api/auth/signup", authsdk.SignupRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret123", OTP: s.lastCode(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	access := findCookie(resp, "accessToken")
	require.NotNil(t, access)
	require.True(t, access.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, access.SameSite)
	require.Equal(t, 900, access.MaxAge)

	refresh := findCookie(resp, "refreshToken")
	require.NotNil(t, refresh)
	require.Equal(t, 7*24*3600, refresh.MaxAge)
}

func TestSignupErrors(t *testing.T) {
	s := newServer(t, generous())
	s.signup(t, "taken@example.com", "secret123")

	t.Run("wrong otp", func(t *testing.T) {
		s.post(t, "/api/auth/request-otp", authsdk.RequestOTPRequest{Email: "carol@example.com", Purpose: "verify"})
		resp := s.post(t, "/api/auth/signup", authsdk.SignupRequest{
			Name: "Carol", Email: "carol@example.com", Password: "secret123", OTP: "000000",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_otp", decodeError(t, resp).Error)
	})

	t.Run("existing user", func(t *testing.T) {
		resp := s.post(t, "/api/auth/signup", authsdk.SignupRequest{
			Name: "Again", Email: "taken@example.com", Password: "secret123", OTP: "123456",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "user_exists", decodeError(t, resp).Error)
	})

	t.Run("validation", func(t *testing.T) {
		resp := s.post(t, "/api/auth/signup", authsdk.SignupRequest{
			Name: "Al", Email: "not-an-email", Password: "123", OTP: "12",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		require.Equal(t, "validation_error", body.Error)
		require.Contains(t, body.Details, "email")
		require.Contains(t, body.Details, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := s.post(t, "/api/auth/signup", `{"name":`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_request", decodeError(t, resp).Error)
	})
}

func TestLogin(t *testing.T) {
	s := newServer(t, generous())
	s.signup(t, "dave@example.com", "secret123")
	s.seedUser(t, "pending@example.com", "secret123", false, domain.RoleCustomer)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		profile, err := s.client(t).Login(ctx, authsdk.LoginRequest{Email: "DAVE@example.com", Password: "secret123"})
		require.NoError(t, err)
		require.Equal(t, "dave@example.com", profile.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.client(t).Login(ctx, authsdk.LoginRequest{Email: "dave@example.com", Password: "wrong-pass"})
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.client(t).Login(ctx, authsdk.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	})

	t.Run("unverified", func(t *testing.T) {
		_, err := s.client(t).Login(ctx, authsdk.LoginRequest{Email: "pending@example.com", Password: "secret123"})
		require.ErrorIs(t, err, authsdk.ErrNotVerified)
	})
}

func TestLogoutWithoutCookie(t *testing.T) {
	s := newServer(t, generous())

	resp := s.post(t, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := findCookie(resp, name)
		require.NotNil(t, ck, name)
		require.Negative(t, ck.MaxAge, name)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	c := s.signup(t, "erin@example.com", "secret123")

	_, err := c.Logout(ctx)
	require.NoError(t, err)

	_, err = c.Profile(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)
	require.ErrorIs(t, c.RefreshToken(ctx), authsdk.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()

	t.Run("missing cookie", func(t *testing.T) {
		resp := s.post(t, "/api/auth/refreshToken", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Refresh token is not present", decodeError(t, resp).Message)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		resp := s.post(t, "/api/auth/refresh-token", nil, &http.Cookie{Name: "refreshToken", Value: "nope"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("both paths refresh", func(t *testing.T) {
		s.signup(t, "frank@example.com", "secret123")
		login := s.post(t, "/api/auth/login", authsdk.LoginRequest{Email: "frank@example.com", Password: "secret123"})
		refresh := findCookie(login, "refreshToken")
		require.NotNil(t, refresh)

		for _, path := range []string{"/api/auth/refreshToken", "/api/auth/refresh-token"} {
			resp := s.post(t, path, nil, refresh)
			require.Equal(t, http.StatusOK, resp.StatusCode, path)
			require.NotNil(t, findCookie(resp, "accessToken"), path)
			require.Nil(t, findCookie(resp, "refreshToken"), "refresh token is not rotated")
		}
	})

	t.Run("superseded by newer login", func(t *testing.T) {
		first := s.signup(t, "grace@example.com", "secret123")
		_, err := s.client(t).Login(ctx, authsdk.LoginRequest{Email: "grace@example.com", Password: "secret123"})
		require.NoError(t, err)

		require.ErrorIs(t, first.RefreshToken(ctx), authsdk.ErrUnauthorized)
	})
}

func TestSilentRefreshEndToEnd(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	s.signup(t, "heidi@example.com", "secret123")

	// Log in "20 minutes ago" so the access cookie is already expired.
	s.setNow(time.Now().Add(-20 * time.Minute))
	c := s.client(t)
	_, err := c.Login(ctx, authsdk.LoginRequest{Email: "heidi@example.com", Password: "secret123"})
	require.NoError(t, err)
	s.setNow(time.Time{})

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "heidi@example.com", profile.Email)
	require.EqualValues(t, 1, c.Refreshes())
}

func TestProfileRequiresCookie(t *testing.T) {
	s := newServer(t, generous())

	resp, err := http.Get(s.URL + "/api/auth/profile")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Unauthorized - No access token provided", decodeError(t, resp).Message)
}

func TestAdminPing(t *testing.T) {
	s := newServer(t, generous())
	ctx := context.Background()
	s.seedUser(t, "admin@example.com", "secret123", true, domain.RoleAdmin)

	customer := s.signup(t, "ivan@example.com", "secret123")
	require.ErrorIs(t, customer.AdminPing(ctx), authsdk.ErrAccessDenied)

	admin := s.client(t)
	profile, err := admin.Login(ctx, authsdk.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.True(t, profile.IsAdmin())
	require.NoError(t, admin.AdminPing(ctx))
}

func TestStrictRateLimit(t *testing.T) {
	limits := generous()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	s := newServer(t, limits)

	body := authsdk.LoginRequest{Email: "judy@example.com", Password: "secret123"}
	first := s.post(t, "/api/auth/login", body)
	require.Equal(t, http.StatusBadRequest, first.StatusCode)

	second := s.post(t, "/api/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	require.Equal(t, "rate_limit_exceeded", decodeError(t, second).Error)
}

func TestCORSAllowsCredentials(t *testing.T) {
	s := newServer(t, generous())

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "http://shop.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestLoginWrongPasswordSetsNoCookies(t *testing.T) {
	s := newServer(t, generous())
	s.signup(t, "nina@example.com", "secret123")

	resp := s.post(t, "/api/auth/login", authsdk.LoginRequest{Email: "nina@example.com", Password: "wrong-pass"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, resp.Cookies())
	require.Equal(t, "invalid_credentials", decodeError(t, resp).Error)
}
