package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

type ProfileHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the user the accessToken cookie belongs to.
//	@Tags			Auth
//	@Produce		json
//	@Security		CookieAuth
//	@Success		200	{object}	authsdk.UserProfile
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthorized"
//	@Router			/api/auth/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	// The authentication middleware already loaded the account.
	if user, ok := p.Account.(domain.User); ok {
		httpx.WriteJSON(w, http.StatusOK, toProfile(user))
		return
	}

	user, err := h.UserService.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			authsdk.ErrUnauthorized.WithMessage("User not found").WriteError(w)
			return
		}
		writeServiceError(w, r, "profile", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}

// AdminPingHandler godoc
//
//	@Summary		Admin check
//	@Description	Answers 200 for admins. Exists so clients can probe the admin guard.
//	@Tags			Auth
//	@Produce		json
//	@Security		CookieAuth
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthorized"
//	@Failure		403	{object}	authsdk.ErrorResponse	"access_denied"
//	@Router			/api/auth/admin/ping [get].
func AdminPingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "pong"})
	}
}
