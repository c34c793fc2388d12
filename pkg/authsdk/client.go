package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SDKClient talks to the shopfront auth service. Session cookies live in
// its jar, and its transport refreshes an expired access cookie once before
// surfacing a 401.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	refresher *RefreshTransport

	mu        sync.RWMutex
	onExpired func(ctx context.Context)
}

// NewSDKClient creates a client with a cookie jar and a RefreshTransport
// wrapped around http.DefaultTransport.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &SDKClient{BaseURL: strings.TrimSuffix(baseURL, "/")}
	c.refresher = &RefreshTransport{
		Base:      http.DefaultTransport,
		Jar:       jar,
		Refresh:   c.RefreshToken,
		OnFailure: c.sessionExpired,
	}
	c.HTTPClient = &http.Client{
		Jar:       jar,
		Transport: c.refresher,
		Timeout:   10 * time.Second,
	}
	return c, nil
}

// OnSessionExpired registers fn to run when a silent refresh fails. The
// SessionStore uses it to drop the local user.
func (c *SDKClient) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// Refreshes reports how many silent refreshes have succeeded.
func (c *SDKClient) Refreshes() uint64 {
	if c.refresher == nil {
		return 0
	}
	return c.refresher.Generation()
}

// sessionExpired forces a logout: local state first, then a best-effort
// server logout so the cookies are cleared too.
func (c *SDKClient) sessionExpired(ctx context.Context, _ error) {
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()

	if fn != nil {
		fn(ctx)
	}
	_, _ = c.Logout(ctx)
}
