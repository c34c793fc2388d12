package http

import (
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Authenticate with email and password. Sets the accessToken and refreshToken cookies
//	@Description	and supersedes any earlier session of the same user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	authsdk.UserProfile
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error, invalid_credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"email_not_verified"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	h.Cookies.setTokens(w, pair)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}
