package authsdk

import (
	"context"
	"net/http"
)

// Signup creates an account. The server sets session cookies on success.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var out SignupResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for session cookies and the user's profile.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*UserProfile, error) {
	var out UserProfile
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh token server side and clears the cookies.
func (c *SDKClient) Logout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken asks for a new access cookie using the refresh cookie.
func (c *SDKClient) RefreshToken(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/refreshToken", nil, nil, http.StatusOK)
}

// Profile returns the signed-in user.
func (c *SDKClient) Profile(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminPing succeeds only for an admin session.
func (c *SDKClient) AdminPing(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/auth/admin/ping", nil, nil, http.StatusOK)
}

func (c *SDKClient) RequestOTP(ctx context.Context, req RequestOTPRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/request-otp", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP consumes a code. For PurposeReset the response carries the
// reset token ResetPassword needs.
func (c *SDKClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-otp", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/reset-password", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
