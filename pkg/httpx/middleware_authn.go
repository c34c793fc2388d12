package httpx

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/shopfront/pkg/jwtx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// ErrUnknownPrincipal is returned by a PrincipalLoader when the token's
// subject no longer maps to an account.
var ErrUnknownPrincipal = errors.New("httpx: unknown principal")

// Principal is the authenticated caller as far as middleware cares.
type Principal struct {
	UserID string
	Role   string

	// Account is whatever record the loader fetched to build the principal,
	// handed on so handlers need not read it again.
	Account any
}

// PrincipalLoader resolves a verified token subject into a Principal.
type PrincipalLoader func(ctx context.Context, userID string) (Principal, error)

// CookieAuthn authenticates requests with the access token carried in the
// named cookie. The token must verify and its subject must still exist,
// otherwise the request is answered with 401. Loader failures other than
// ErrUnknownPrincipal are 500s.
func CookieAuthn(cookieName string, v jwtx.Verifier, load PrincipalLoader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized - No access token provided")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Debug("access token rejected", "err", err)
				if errors.Is(err, jwtx.ErrExpired) {
					WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized - Access token expired")
					return
				}
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized - Invalid access token")
				return
			}

			p, err := load(ctx, claims.Subject)
			switch {
			case errors.Is(err, ErrUnknownPrincipal):
				WriteError(w, http.StatusUnauthorized, "unauthorized", "User not found")
				return
			case err != nil:
				log.Error("failed to load principal", "user_id", claims.Subject, "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
				return
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "user_id", p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole only lets through callers whose role is one of roles. It must
// run after CookieAuthn.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !slices.Contains(roles, role) {
				WriteError(w, http.StatusForbidden, "access_denied", "Access denied - Admin only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
