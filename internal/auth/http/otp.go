package http

import (
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

type RequestOTPHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Request a one-time code
//	@Description	Mails a 6 digit code valid for 10 minutes. Any earlier code for the same email and purpose stops working.
//	@Description	Delivery problems are not reported to the caller.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RequestOTPRequest	true	"email, purpose (verify|reset)"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error, invalid_request"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/request-otp [post].
func (h *RequestOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RequestOTPRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AuthService.RequestOTP(r.Context(), req.Email, domain.CodePurpose(req.Purpose)); err != nil {
		writeServiceError(w, r, "request otp", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "OTP sent to " + req.Email})
}

type VerifyOTPHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify a one-time code
//	@Description	Consumes the code. For purpose "verify" the account is marked verified.
//	@Description	For purpose "reset" the response carries a resetToken that reset-password requires.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.VerifyOTPRequest	true	"email, otp, purpose"
//	@Success		200		{object}	authsdk.VerifyOTPResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error, invalid_otp"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded, too_many_attempts"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/verify-otp [post].
func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	grant, err := h.AuthService.VerifyOTP(r.Context(), req.Email, req.OTP, domain.CodePurpose(req.Purpose))
	if err != nil {
		writeServiceError(w, r, "verify otp", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyOTPResponse{
		Message:    "OTP verified successfully",
		ResetToken: grant,
	})
}

type ResetPasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Reset password
//	@Description	Sets a new password. Requires the resetToken from a reset-purpose verify-otp for the same email.
//	@Description	The token works once and the user's current session is ended.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.ResetPasswordRequest	true	"email, newPassword, resetToken"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error, invalid_reset_token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"not_found"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ResetToken); err != nil {
		writeServiceError(w, r, "reset password", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password reset successfully"})
}
