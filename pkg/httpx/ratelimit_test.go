package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/aussiebroadwan/shopfront/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = addr
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1:12345")))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("falls back to raw RemoteAddr without port", func(t *testing.T) {
		require.Equal(t, "pipe", httpx.IPKeyExtractor(requestFrom("pipe")))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := httpx.ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, prefixes)

	_, err = httpx.ParseTrustedProxies([]string{"not-an-ip"})
	require.Error(t, err)
	_, err = httpx.ParseTrustedProxies([]string{"10.0.0.0/99"})
	require.Error(t, err)
}

func TestClientIP(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	ip := httpx.ClientIP{TrustedProxies: proxies}

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"untrusted peer ignores xff", "198.51.100.7:1", "203.0.113.1", "", "198.51.100.7"},
		{"untrusted peer ignores x-real-ip", "198.51.100.7:1", "", "203.0.113.2", "198.51.100.7"},
		{"trusted peer uses xff", "10.0.0.2:1", "203.0.113.1", "", "203.0.113.1"},
		{"spoofed prefix is skipped", "10.0.0.2:1", "1.2.3.4, 203.0.113.1", "", "203.0.113.1"},
		{"chained proxies are skipped", "10.0.0.2:1", "203.0.113.1, 10.0.0.9", "", "203.0.113.1"},
		{"trusted peer uses x-real-ip", "10.0.0.2:1", "", "203.0.113.2", "203.0.113.2"},
		{"garbage hop stops the walk", "10.0.0.2:1", "203.0.113.1, bogus", "", "10.0.0.2"},
		{"trusted peer without headers", "10.0.0.2:1", "", "", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom(tt.remote)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			require.Equal(t, tt.want, ip.Key(req))
		})
	}
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)

	t.Run("combines multiple extractors", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req = req.WithContext(httpx.WithPrincipal(req.Context(), httpx.Principal{UserID: "user-1"}))
		require.Equal(t, "user-1:192.168.1.1", extractor(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extractor(requestFrom("192.168.1.1:12345")))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 5, Window: time.Second, Burst: 5,
		}, httpx.IPKeyExtractor)(okHandler)

		for i := range 5 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}
	})

	t.Run("blocks requests over limit with headers", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, httpx.IPKeyExtractor)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.JSONEq(t,
			`{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later."}`,
			rec.Body.String())
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
		}, httpx.ClientIP{})(okHandler)

		for range 2 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2:12345"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPIgnoresSpoofedForwarding(t *testing.T) {
	limit := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}

	t.Run("direct client", func(t *testing.T) {
		h := httpx.RateLimitByIP(limit, httpx.ClientIP{})(okHandler)

		for i := range 5 {
			req := requestFrom("198.51.100.7:4000")
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if i == 0 {
				require.Equal(t, http.StatusOK, rec.Code)
				continue
			}
			require.Equal(t, http.StatusTooManyRequests, rec.Code, "rotated header %d must share the bucket", i)
		}
	})

	t.Run("behind trusted proxy", func(t *testing.T) {
		proxies, err := httpx.ParseTrustedProxies([]string{"10.0.0.1"})
		require.NoError(t, err)
		h := httpx.RateLimitByIP(limit, httpx.ClientIP{TrustedProxies: proxies})(okHandler)

		send := func(xff string) int {
			req := requestFrom("10.0.0.1:4000")
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		require.Equal(t, http.StatusOK, send("198.51.100.7"))
		require.Equal(t, http.StatusTooManyRequests, send("1.1.1.1, 198.51.100.7"))
		require.Equal(t, http.StatusTooManyRequests, send("2.2.2.2, 198.51.100.7"))
		require.Equal(t, http.StatusOK, send("198.51.100.8"), "a different real client gets its own bucket")
	})
}

func TestRateLimitByUser(t *testing.T) {
	h := httpx.RateLimitByUser(httpx.RateLimitConfig{
		RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
	}, httpx.ClientIP{})(okHandler)

	as := func(userID string) *http.Request {
		req := requestFrom("10.0.0.1:1")
		return req.WithContext(httpx.WithPrincipal(context.Background(), httpx.Principal{UserID: userID}))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, as("alice"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, as("alice"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Same IP, different user.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, as("bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultRateLimits(t *testing.T) {
	limits := httpx.DefaultRateLimits()

	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   limits.Strict,
		"moderate": limits.Moderate,
		"lenient":  limits.Lenient,
	} {
		require.Positive(t, config.RequestsPerWindow, name)
		require.Positive(t, config.Window, name)
		require.Positive(t, config.Burst, name)
	}

	require.Less(t, limits.Strict.RequestsPerWindow, limits.Moderate.RequestsPerWindow)
	require.Less(t, limits.Moderate.RequestsPerWindow, limits.Lenient.RequestsPerWindow)
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000,
	}, httpx.ClientIP{})(okHandler)

	req := requestFrom("192.168.1.1:12345")
	b.ResetTimer()
	for range b.N {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
