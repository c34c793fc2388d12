package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeUserExists        = "user_exists"
	ErrorCodeInvalidOTP        = "invalid_otp"
	ErrorCodeInvalidCredential = "invalid_credentials"
	ErrorCodeNotVerified       = "email_not_verified"
	ErrorCodeAccessDenied      = "access_denied"
	ErrorCodeUnauthorized      = "unauthorized"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeInvalidResetToken = "invalid_reset_token"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeTooManyAttempts   = "too_many_attempts"
	ErrorCodeServerError       = "server_error"
	ErrorCodePasswordMismatch  = "password_mismatch"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is an error response from the auth service. The server writes
// it with WriteError and the client gets it back from every call that
// receives a non-2xx status.
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on status and code, so errors.Is(err, authsdk.ErrInvalidOTP)
// works regardless of the message text.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

// WithDetails returns a copy of e carrying per-field details.
func (e *APIError) WithDetails(details map[string]string) *APIError {
	c := *e
	c.Details = details
	return &c
}

// WriteError writes e as the JSON error body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:   e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrValidation = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "invalid input",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "Invalid request body",
	}

	// ErrUserExists is a 401 rather than a 409; storefront clients already
	// key off that status.
	ErrUserExists = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUserExists,
		Message:    "User already exists",
	}

	ErrInvalidOTP = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidOTP,
		Message:    "Invalid or expired OTP",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidCredential,
		Message:    "Invalid credentials",
	}

	ErrNotVerified = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeNotVerified,
		Message:    "Please verify your email before logging in",
	}

	ErrAccessDenied = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccessDenied,
		Message:    "Access denied - Admin only",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUnauthorized,
		Message:    "Unauthorized",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "User not found",
	}

	ErrInvalidResetToken = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidResetToken,
		Message:    "Invalid or expired reset token",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "Too many requests",
	}

	ErrTooManyAttempts = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeTooManyAttempts,
		Message:    "Too many incorrect codes. Request a new OTP.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "Internal server error",
	}

	// ErrPasswordMismatch never reaches the wire. Signup returns it when
	// the password confirmation differs.
	ErrPasswordMismatch = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodePasswordMismatch,
		Message:    "Passwords do not match",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response body into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Error != "" || errResp.Message != "") {
		code := errResp.Error
		if code == "" {
			code = ErrorCodeServerError
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    errResp.Message,
			Details:    errResp.Details,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
