package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
	"github.com/aussiebroadwan/shopfront/pkg/metricsx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
	"github.com/go-chi/cors"

	_ "github.com/aussiebroadwan/shopfront/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options carries the deployment knobs the router needs.
type Options struct {
	Cookies     CookieConfig
	RateLimits  httpx.RateLimits
	CORSOrigins []string

	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	opts         Options
	clientIP     httpx.ClientIP

	store store.Store
	cache cache.Cache

	AuthService  *service.AuthService
	UserService  *service.UserService
	TokenService *service.TokenService
}

func NewRouter(buildVersion string, st store.Store, c cache.Cache, logger *slog.Logger, opts Options) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		opts:         opts,
		clientIP:     httpx.ClientIP{TrustedProxies: opts.TrustedProxies},
		store:        st,
		cache:        c,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metricsx.Instrument,
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", slogx.RequestIDHeader},
			ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOTP()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Shopfront Authentication API
//	@version		0.1.0
//	@description	Cookie based session service for the storefront: OTP gated signup, login, logout,
//	@description	access token refresh and password reset.
//	@description
//	@description				Access tokens live 15 minutes, refresh tokens 7 days. Both travel as HttpOnly cookies.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/shopfront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						accessToken
//	@description				Access token set by login, signup and refreshToken.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	limits := r.opts.RateLimits
	cookies := r.opts.Cookies

	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(&SignupHandler{AuthService: r.AuthService, Cookies: cookies},
			httpx.RateLimitByIP(limits.Strict, r.clientIP),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService, Cookies: cookies},
			httpx.RateLimitByIP(limits.Strict, r.clientIP),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService, Cookies: cookies},
			httpx.RateLimitByIP(limits.Moderate, r.clientIP),
		),
	)

	// Older clients call /refresh-token; both share one limiter.
	refresh := httpx.Chain(&RefreshHandler{AuthService: r.AuthService, Cookies: cookies},
		httpx.RateLimitByIP(limits.Moderate, r.clientIP),
	)
	r.Mux.Handle("POST /api/auth/refreshToken", refresh)
	r.Mux.Handle("POST /api/auth/refresh-token", refresh)

	authn := httpx.CookieAuthn(AccessCookie, r.TokenService.Access, r.loadPrincipal)

	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(&ProfileHandler{UserService: r.UserService},
			authn,
			httpx.RateLimitByUser(limits.Lenient, r.clientIP),
		),
	)
	r.Mux.Handle("GET /api/auth/admin/ping",
		httpx.Chain(AdminPingHandler(),
			authn,
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(limits.Lenient, r.clientIP),
		),
	)
}

func (r *Router) registerOTP() {
	limits := r.opts.RateLimits

	r.Mux.Handle("POST /api/auth/request-otp",
		httpx.Chain(&RequestOTPHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(limits.Strict, r.clientIP),
		),
	)
	r.Mux.Handle("POST /api/auth/verify-otp",
		httpx.Chain(&VerifyOTPHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(limits.Strict, r.clientIP),
		),
	)
	r.Mux.Handle("POST /api/auth/reset-password",
		httpx.Chain(&ResetPasswordHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(limits.Strict, r.clientIP),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.opts.RateLimits.Lenient, r.clientIP),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(r.opts.RateLimits.Lenient, r.clientIP),
		),
	)
	r.Mux.Handle("GET /metrics", metricsx.Handler())
}

// loadPrincipal backs the cookie authentication middleware.
func (r *Router) loadPrincipal(ctx context.Context, userID string) (httpx.Principal, error) {
	u, err := r.UserService.GetUserByID(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return httpx.Principal{}, httpx.ErrUnknownPrincipal
	}
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{UserID: u.ID, Role: string(u.Role), Account: u}, nil
}
