package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/cache/drivers/redis"
	httpapi "github.com/aussiebroadwan/shopfront/internal/auth/http"
	"github.com/aussiebroadwan/shopfront/internal/auth/mail"
	"github.com/aussiebroadwan/shopfront/internal/auth/service"
	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/shopfront/pkg/cryptox"
	"github.com/aussiebroadwan/shopfront/pkg/jwtx"
	"github.com/aussiebroadwan/shopfront/pkg/metricsx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the auth service together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	cache  cache.Cache
	mailer mail.Mailer

	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "shopfront-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	metricsx.Register()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.cache.Close()
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.cache.Close()
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, then releases the cache and database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initCache() error {
	c, err := redis.New(app.cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	// A cache that is down at boot is reported by /readyz rather than
	// refusing to start.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		app.logger.Warn("cache not reachable at startup", "error", err)
	}

	app.cache = c
	return nil
}

func (app *Application) initMailer() error {
	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("SMTP_HOST not set, one-time codes are written to the log")
		app.mailer = &mail.LogMailer{Logger: app.logger}
		return nil
	}

	m, err := mail.NewSMTPMailer(app.cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = m
	return nil
}

func (app *Application) initServices() error {
	opts := jwtx.VerifyOptions{Issuer: app.cfg.Issuer, Leeway: app.cfg.TokenLeeway}

	access, err := jwtx.NewHS256([]byte(app.cfg.AccessTokenSecret), jwtx.TokenAccess, opts)
	if err != nil {
		return fmt.Errorf("access token signer: %w", err)
	}
	refresh, err := jwtx.NewHS256([]byte(app.cfg.RefreshTokenSecret), jwtx.TokenRefresh, opts)
	if err != nil {
		return fmt.Errorf("refresh token signer: %w", err)
	}

	app.tokenService = &service.TokenService{
		Access:     access,
		Refresh:    refresh,
		Cache:      app.cache,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.authService = &service.AuthService{
		Store:  app.db,
		Cache:  app.cache,
		Tokens: app.tokenService,
		OTP: &service.OTPService{
			Store:       app.db,
			Cache:       app.cache,
			Mailer:      app.mailer,
			MaxAttempts: app.cfg.OTPMaxAttempts,
		},
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	// Validated in New.
	proxies, _ := app.cfg.TrustedProxyPrefixes()

	router := httpapi.NewRouter(BuildVersion, app.db, app.cache, app.logger, httpapi.Options{
		Cookies:        httpapi.CookieConfig{Secure: app.cfg.SecureCookies()},
		RateLimits:     app.cfg.RateLimits,
		CORSOrigins:    app.cfg.CORSOrigins,
		TrustedProxies: proxies,
	})

	router.AuthService = app.authService
	router.UserService = app.userService
	router.TokenService = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
