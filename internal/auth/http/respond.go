package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// decode reads and validates the JSON body into dst. On failure it writes
// the error response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeAndValidate(r, dst)
	if err == nil {
		return true
	}

	var verr *httpx.ValidationError
	switch {
	case errors.As(err, &verr):
		authsdk.ErrValidation.WithMessage(verr.Message()).WithDetails(verr.Details()).WriteError(w)
	case errors.Is(err, httpx.ErrMalformedBody):
		authsdk.ErrInvalidRequest.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request validation failed unexpectedly", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
	return false
}

// writeServiceError maps the service sentinels onto API errors. Anything it
// does not recognise is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		authsdk.ErrUserExists.WriteError(w)
	case errors.Is(err, service.ErrInvalidOTP):
		authsdk.ErrInvalidOTP.WriteError(w)
	case errors.Is(err, service.ErrTooManyAttempts):
		authsdk.ErrTooManyAttempts.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUnverified):
		authsdk.ErrNotVerified.WriteError(w)
	case errors.Is(err, service.ErrMissingToken):
		authsdk.ErrUnauthorized.WithMessage("Refresh token is not present").WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		authsdk.ErrUnauthorized.WithMessage("Invalid refresh token").WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		authsdk.ErrInvalidResetToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidPurpose):
		authsdk.ErrValidation.WithMessage("purpose must be one of: verify, reset").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

func toProfile(u domain.User) authsdk.UserProfile {
	return authsdk.UserProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
