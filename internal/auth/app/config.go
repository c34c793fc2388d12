package app

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/shopfront/internal/auth/mail"
	"github.com/aussiebroadwan/shopfront/pkg/httpx"
)

var (
	ErrMissingSecret = errors.New("access and refresh token secrets are required")
	ErrSharedSecret  = errors.New("access and refresh token secrets must differ")
	ErrNoMailer      = errors.New("SMTP_HOST is required outside development")
	ErrTrustedProxy  = errors.New("TRUSTED_PROXIES must list addresses or CIDR ranges")
)

type Config struct {
	Issuer       string `env:"AUTH_ISSUER" envDefault:"shopfront-auth"`
	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	PepperFile   string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	TokenLeeway        time.Duration `env:"TOKEN_LEEWAY" envDefault:"5s"`

	// CookieSecure marks session cookies Secure. It follows Env unless set.
	CookieSecure *bool    `env:"COOKIE_SECURE"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means rate limits key on the socket address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// OTPMaxAttempts is how many wrong guesses a code survives.
	OTPMaxAttempts int `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`

	Redis      RedisConfig      `envPrefix:"REDIS_"`
	SMTP       mail.SMTPConfig  `envPrefix:"SMTP_"`
	RateLimits httpx.RateLimits `envPrefix:"RATELIMIT_"`

	Env                  string        `env:"ENV" envDefault:"development"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

type RedisConfig struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
}

// LoadConfig reads the environment. Rate limit profiles start from
// httpx.DefaultRateLimits and are overridden per field.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultRateLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func (c Config) SecureCookies() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return c.IsProduction()
}

func (c Config) Validate() error {
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return ErrMissingSecret
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return ErrSharedSecret
	}
	if c.IsProduction() && c.SMTP.Host == "" {
		return ErrNoMailer
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes, err := httpx.ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrustedProxy, err)
	}
	return prefixes, nil
}
