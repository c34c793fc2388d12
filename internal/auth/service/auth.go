package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/pkg/cryptox"
	"github.com/aussiebroadwan/shopfront/pkg/idx"
	"github.com/aussiebroadwan/shopfront/pkg/metricsx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// DefaultResetGrantTTL bounds the gap between verifying a reset code and
// choosing the new password.
const DefaultResetGrantTTL = 10 * time.Minute

// AuthService drives signup, login, logout, refresh and password reset on
// top of the stores, the token service and the OTP service.
type AuthService struct {
	Store  store.Store
	Cache  cache.Cache
	Tokens *TokenService
	OTP    *OTPService

	ResetGrantTTL time.Duration
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	OTP      string
}

// Signup creates a verified account for the owner of a live verify code and
// logs them in. Checking the code, creating the user and consuming the code
// happen in one transaction, so an account never exists unverified.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, domain.TokenPair, error) {
	email := normalizeEmail(in.Email)
	l := slogx.FromContext(ctx)

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		metricsx.AuthEvent("signup", "conflict")
		return domain.User{}, domain.TokenPair{}, ErrUserExists
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, domain.TokenPair{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Verified:     true,
		Role:         domain.RoleCustomer,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.OTP.Consume(ctx, tx, email, domain.PurposeVerify, in.OTP); err != nil {
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		metricsx.AuthEvent("signup", outcome(err))
		return domain.User{}, domain.TokenPair{}, err
	}

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssueAndPersist(ctx, created.ID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	metricsx.AuthEvent("signup", "success")
	l.Info("user signed up", "user_id", created.ID)
	return created, pair, nil
}

// Login checks the password of a verified account and starts a new session,
// superseding any earlier one.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	email = normalizeEmail(email)
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		metricsx.AuthEvent("login", "failure")
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", "user_id", user.ID, "err", err)
		}
		metricsx.AuthEvent("login", "failure")
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	if !user.Verified {
		metricsx.AuthEvent("login", "unverified")
		return domain.User{}, domain.TokenPair{}, ErrUnverified
	}

	pair, err := s.Tokens.IssueAndPersist(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	metricsx.AuthEvent("login", "success")
	l.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Logout ends the session the refresh token belongs to, if it still is the
// current one. A missing or unverifiable token is not an error.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}

	err := s.Tokens.RevokeMatching(ctx, refresh)
	if errors.Is(err, ErrInvalidToken) {
		slogx.FromContext(ctx).Debug("logout with unverifiable refresh token", "err", err)
		return nil
	}
	if err != nil {
		metricsx.AuthEvent("logout", "error")
		return err
	}

	metricsx.AuthEvent("logout", "success")
	return nil
}

// Refresh mints a new access token from the caller's refresh token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", ErrMissingToken
	}

	access, err := s.Tokens.RotateAccess(ctx, refresh)
	if err != nil {
		metricsx.AuthEvent("refresh", outcome(err))
		return "", err
	}

	metricsx.AuthEvent("refresh", "success")
	return access, nil
}

// RequestOTP mails a fresh code for purpose.
func (s *AuthService) RequestOTP(ctx context.Context, email string, purpose domain.CodePurpose) error {
	err := s.OTP.Request(ctx, email, purpose)
	metricsx.AuthEvent("otp_request", outcome(err))
	return err
}

// VerifyOTP consumes a code. A verify code marks the account verified. A
// reset code yields a single-use grant that ResetPassword requires.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string, purpose domain.CodePurpose) (string, error) {
	email = normalizeEmail(email)

	switch purpose {
	case domain.PurposeVerify:
		err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := s.OTP.Consume(ctx, tx, email, purpose, code); err != nil {
				return err
			}
			return tx.Users().MarkVerified(ctx, email)
		})
		metricsx.AuthEvent("otp_verify", outcome(err))
		return "", err

	case domain.PurposeReset:
		if err := s.OTP.Consume(ctx, s.Store, email, purpose, code); err != nil {
			metricsx.AuthEvent("otp_verify", outcome(err))
			return "", err
		}

		grant, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return "", err
		}
		if err := s.Cache.Set(ctx, cache.PasswordResetKey(email), cryptox.FingerprintToken(grant), s.resetGrantTTL()); err != nil {
			return "", fmt.Errorf("store reset grant: %w", err)
		}

		metricsx.AuthEvent("otp_verify", "success")
		return grant, nil

	default:
		return "", ErrInvalidPurpose
	}
}

// ResetPassword sets a new password for email. The caller must present the
// grant VerifyOTP handed out for that same email. Only a matching grant is
// consumed, so a wrong guess cannot cancel the owner's reset. The user's
// session is revoked afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	email = normalizeEmail(email)
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		metricsx.AuthEvent("password_reset", "failure")
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if resetToken == "" {
		metricsx.AuthEvent("password_reset", "failure")
		return ErrInvalidResetToken
	}

	key := cache.PasswordResetKey(email)
	stored, err := s.Cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		metricsx.AuthEvent("password_reset", "failure")
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if !cryptox.EqualTokens(stored, cryptox.FingerprintToken(resetToken)) {
		metricsx.AuthEvent("password_reset", "failure")
		return ErrInvalidResetToken
	}

	// Two resets racing on one grant: only the one that deletes it proceeds.
	consumed, err := s.Cache.DeleteIfEquals(ctx, key, stored)
	if err != nil {
		return err
	}
	if !consumed {
		metricsx.AuthEvent("password_reset", "failure")
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// The password is already changed; a stuck session expires on its own.
	if err := s.Tokens.Revoke(ctx, user.ID); err != nil {
		l.Error("failed to revoke session after password reset", "user_id", user.ID, "err", err)
	}

	metricsx.AuthEvent("password_reset", "success")
	l.Info("password reset", "user_id", user.ID)
	return nil
}

func (s *AuthService) resetGrantTTL() time.Duration {
	if s.ResetGrantTTL > 0 {
		return s.ResetGrantTTL
	}
	return DefaultResetGrantTTL
}

// outcome labels err for the auth events counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUserExists):
		return "conflict"
	case errors.Is(err, ErrTooManyAttempts):
		return "locked"
	case errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidPurpose):
		return "failure"
	default:
		return "error"
	}
}
