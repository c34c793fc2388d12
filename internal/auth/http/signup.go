package http

import (
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

type SignupHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Sign up
//	@Description	Create a verified account using a verify-purpose OTP previously sent to the email.
//	@Description	On success both session cookies are set.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"name, email, password, otp"
//	@Success		201		{object}	authsdk.SignupResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error, invalid_request, invalid_otp"
//	@Failure		401		{object}	authsdk.ErrorResponse	"user_exists"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded, too_many_attempts"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if !decode(w, r, &req) {
		return
	}

	user, pair, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}

	h.Cookies.setTokens(w, pair)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.SignupResponse{
		User:    toProfile(user),
		Message: "User created successfully",
	})
}
