package authsdk

import "strings"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is the machine readable code (e.g., "invalid_otp")
	Error string `json:"error"`

	// Message is the human readable text, suitable for showing to a user
	Message string `json:"message"`

	// Details maps request field names to validation messages
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// User Types
// ============================================================================

// UserProfile is the public view of an account. The "_id" field name is
// what existing storefront clients expect.
type UserProfile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u UserProfile) IsAdmin() bool { return u.Role == "admin" }

// CartItem is a line in the pending cart the session store keeps alongside
// the user. Cart maths lives elsewhere; this is only a snapshot.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Request Types
// ============================================================================

// OTP purposes.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	OTP      string `json:"otp" validate:"required,len=6"`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

// SignupResponse is returned with 201 on a successful signup.
type SignupResponse struct {
	User    UserProfile `json:"user"`
	Message string      `json:"message"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

// RequestOTPRequest is the body of POST /api/auth/request-otp.
type RequestOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required,oneof=verify reset"`
}

func (r *RequestOTPRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Purpose = strings.TrimSpace(r.Purpose)
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTP     string `json:"otp" validate:"required,len=6"`
	Purpose string `json:"purpose" validate:"required,oneof=verify reset"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	r.Purpose = strings.TrimSpace(r.Purpose)
}

// VerifyOTPResponse carries a reset grant when the purpose was "reset".
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
// ResetToken is the grant returned by a reset-purpose VerifyOTP.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=50"`
	ResetToken  string `json:"resetToken" validate:"required"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.ResetToken = strings.TrimSpace(r.ResetToken)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the stores the service cannot run
// without.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
