package http

import (
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Ends the session the refreshToken cookie belongs to and clears both cookies.
//	@Description	Cookies are cleared even when revocation fails.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.AuthService.Logout(r.Context(), cookieValue(r, RefreshCookie))
	h.Cookies.clear(w)

	if err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out successfully"})
}

type RefreshHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Refresh access token
//	@Description	Mints a new accessToken cookie from the refreshToken cookie. The refresh token is not rotated.
//	@Description	Also served at /api/auth/refresh-token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthorized"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/auth/refreshToken [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	access, err := h.AuthService.Refresh(r.Context(), cookieValue(r, RefreshCookie))
	if err != nil {
		writeServiceError(w, r, "refresh", err)
		return
	}

	h.Cookies.setAccess(w, access, h.AuthService.Tokens.AccessTokenTTL())
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Token refreshed successfully"})
}
