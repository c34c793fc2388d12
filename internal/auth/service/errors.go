package service

import "errors"

var (
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnverified         = errors.New("email_not_verified")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrMissingToken       = errors.New("missing_token")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
	ErrInvalidPurpose     = errors.New("invalid_purpose")
)
