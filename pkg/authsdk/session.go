package authsdk

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// Notifier receives the user-facing outcome of each SessionStore action.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications through slog. It is the default.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func (n LogNotifier) Success(msg string) { n.logger().Info(msg) }
func (n LogNotifier) Error(msg string)   { n.logger().Warn(msg) }

// SessionState is a point-in-time copy of the store.
type SessionState struct {
	User         *UserProfile
	Cart         []CartItem
	Loading      bool
	CheckingAuth bool
}

// SessionStore is the client-side source of truth for who is signed in.
// Every action calls one endpoint and only changes state once the server
// has answered. It is safe for concurrent use.
type SessionStore struct {
	client *SDKClient
	notify Notifier

	mu       sync.Mutex
	user     *UserProfile
	cart     []CartItem
	inflight int
	checking bool
}

// NewSessionStore binds a store to client. A nil notifier logs through
// slog. Hydrate it with CheckAuth.
func NewSessionStore(client *SDKClient, notify Notifier) *SessionStore {
	if notify == nil {
		notify = LogNotifier{}
	}
	s := &SessionStore{client: client, notify: notify, checking: true}
	client.OnSessionExpired(func(context.Context) { s.setUser(nil) })
	return s
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		Cart:         slices.Clone(s.cart),
		Loading:      s.inflight > 0,
		CheckingAuth: s.checking,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// SetCart replaces the pending cart snapshot.
func (s *SessionStore) SetCart(items []CartItem) {
	s.mu.Lock()
	s.cart = slices.Clone(items)
	s.mu.Unlock()
}

func (s *SessionStore) Signup(ctx context.Context, req SignupRequest, confirmPassword string) error {
	if req.Password != confirmPassword {
		s.notify.Error(ErrPasswordMismatch.Message)
		return ErrPasswordMismatch
	}

	done := s.begin()
	defer done()

	resp, err := s.client.Signup(ctx, req)
	if err != nil {
		s.fail(err, "An error occurred. Please try again later.")
		return err
	}
	s.setUser(&resp.User)
	s.notify.Success("Signup successful!")
	return nil
}

func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	done := s.begin()
	defer done()

	user, err := s.client.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		s.fail(err, "An error occurred. Please try again later.")
		return err
	}
	s.setUser(user)
	s.notify.Success("Login successful!")
	return nil
}

func (s *SessionStore) Logout(ctx context.Context) error {
	done := s.begin()
	defer done()

	if _, err := s.client.Logout(ctx); err != nil {
		s.fail(err, "Logout failed.")
		return err
	}
	s.setUser(nil)
	s.notify.Success("Logged out successfully!")
	return nil
}

// CheckAuth loads the profile for the current cookies. Failure is the normal
// signed-out case and is not reported.
func (s *SessionStore) CheckAuth(ctx context.Context) error {
	s.mu.Lock()
	s.checking = true
	s.mu.Unlock()

	user, err := s.client.Profile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checking = false
	if err != nil {
		s.user = nil
		return err
	}
	s.user = user
	return nil
}

// RefreshToken refreshes the access cookie explicitly. The transport does
// this on its own after a 401; a failure here signs the user out locally.
func (s *SessionStore) RefreshToken(ctx context.Context) error {
	if err := s.client.RefreshToken(ctx); err != nil {
		s.setUser(nil)
		s.notify.Error("Failed to refresh token!")
		return err
	}
	s.notify.Success("Token refreshed successfully!")
	return nil
}

// VerifyEmail mails a verification code to email.
func (s *SessionStore) VerifyEmail(ctx context.Context, email string) error {
	return s.requestOTP(ctx, email, PurposeVerify, "OTP sent to your email!", "Failed to send OTP.")
}

func (s *SessionStore) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := s.verifyOTP(ctx, email, otp, PurposeVerify)
	return err
}

// RequestPasswordReset mails a reset code to email.
func (s *SessionStore) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestOTP(ctx, email, PurposeReset, "Password reset code sent to your email!", "Failed to send reset code.")
}

// ConfirmPasswordReset verifies a reset code and returns the reset token
// that ResetPassword needs.
func (s *SessionStore) ConfirmPasswordReset(ctx context.Context, email, otp string) (string, error) {
	return s.verifyOTP(ctx, email, otp, PurposeReset)
}

func (s *SessionStore) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	done := s.begin()
	defer done()

	resp, err := s.client.ResetPassword(ctx, ResetPasswordRequest{
		Email:       email,
		NewPassword: newPassword,
		ResetToken:  resetToken,
	})
	if err != nil {
		s.fail(err, "Password reset failed.")
		return err
	}
	s.notify.Success(resp.Message)
	return nil
}

func (s *SessionStore) requestOTP(ctx context.Context, email, purpose, okMsg, failMsg string) error {
	done := s.begin()
	defer done()

	if _, err := s.client.RequestOTP(ctx, RequestOTPRequest{Email: email, Purpose: purpose}); err != nil {
		s.fail(err, failMsg)
		return err
	}
	s.notify.Success(okMsg)
	return nil
}

func (s *SessionStore) verifyOTP(ctx context.Context, email, otp, purpose string) (string, error) {
	done := s.begin()
	defer done()

	resp, err := s.client.VerifyOTP(ctx, VerifyOTPRequest{Email: email, OTP: otp, Purpose: purpose})
	if err != nil {
		s.fail(err, "OTP verification failed.")
		return "", err
	}
	s.notify.Success("OTP verified successfully!")
	return resp.ResetToken, nil
}

func (s *SessionStore) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func (s *SessionStore) setUser(u *UserProfile) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// fail reports the server's message when there is one, fallback otherwise.
func (s *SessionStore) fail(err error, fallback string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		s.notify.Error(apiErr.Message)
		return
	}
	s.notify.Error(fallback)
}
