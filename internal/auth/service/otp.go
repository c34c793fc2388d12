package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/mail"
	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/pkg/cryptox"
	"github.com/aussiebroadwan/shopfront/pkg/metricsx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// DefaultOTPMaxAttempts is how many tries a code gets when MaxAttempts is unset.
const DefaultOTPMaxAttempts = 5

// OTPService issues and consumes emailed one-time codes. With a Cache set,
// each (email, purpose) gets MaxAttempts tries per issued code; after that
// every attempt fails until a new code is requested or the old one expires.
type OTPService struct {
	Store       store.Store
	Cache       cache.Cache
	Mailer      mail.Mailer
	MaxAttempts int

	// Generate defaults to cryptox.GenerateNumericCode.
	Generate func() (string, error)
}

// Request replaces any outstanding code for (email, purpose) with a new one
// and mails it. Delivery failures are logged and counted but not returned:
// the caller cannot tell a bounced mail from a sent one.
func (s *OTPService) Request(ctx context.Context, email string, purpose domain.CodePurpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	email = normalizeEmail(email)
	l := slogx.FromContext(ctx)

	gen := s.Generate
	if gen == nil {
		gen = cryptox.GenerateNumericCode
	}
	code, err := gen()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	var stored domain.OneTimeCode
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OneTimeCodes().DeleteCodes(ctx, email, purpose); err != nil {
			return err
		}
		stored, err = tx.OneTimeCodes().CreateCode(ctx, domain.OneTimeCode{
			Email:    email,
			CodeHash: cryptox.FingerprintToken(code),
			Purpose:  purpose,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, cache.OTPAttemptsKey(string(purpose), email)); err != nil {
			return fmt.Errorf("reset otp attempts: %w", err)
		}
	}

	msg, err := mail.OTPMessage(email, purpose, code, stored.ExpiresAt.Sub(stored.CreatedAt))
	if err != nil {
		return fmt.Errorf("render otp mail: %w", err)
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		metricsx.OTPMailFailed()
		l.Error("failed to send otp mail", "purpose", purpose, "err", err)
		return nil
	}

	l.Info("otp issued", "purpose", purpose, "code_id", stored.ID)
	return nil
}

// Consume checks code against the live codes for (email, purpose) and, on a
// match, deletes all of them. st may be a transaction so callers can bundle
// the consumption with their own writes.
func (s *OTPService) Consume(ctx context.Context, st store.Store, email string, purpose domain.CodePurpose, code string) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	email = normalizeEmail(email)
	attempts := cache.OTPAttemptsKey(string(purpose), email)

	if s.Cache != nil {
		n, err := s.Cache.Incr(ctx, attempts, store.OneTimeCodeTTL)
		if err != nil {
			return fmt.Errorf("count otp attempt: %w", err)
		}
		if n > int64(s.maxAttempts()) {
			slogx.FromContext(ctx).Warn("otp attempts exhausted", "purpose", purpose, "attempts", n)
			return ErrTooManyAttempts
		}
	}

	_, err := st.OneTimeCodes().FindActiveCode(ctx, email, purpose, cryptox.FingerprintToken(code))
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	if err := st.OneTimeCodes().DeleteCodes(ctx, email, purpose); err != nil {
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, attempts); err != nil {
			slogx.FromContext(ctx).Warn("failed to clear otp attempts", "purpose", purpose, "err", err)
		}
	}
	return nil
}

func (s *OTPService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultOTPMaxAttempts
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
