package authsdk

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// skipRefresh lists the endpoints whose 401s mean "bad credentials", not
// "expired access cookie". Retrying them through a refresh would loop.
var skipRefresh = []string{
	"/api/auth/login",
	"/api/auth/signup",
	"/api/auth/refreshToken",
	"/api/auth/refresh-token",
	"/api/auth/logout",
}

// RefreshTransport retries a request once after refreshing the session when
// the server answers 401.
//
// Concurrent 401s share one refresh call. A request whose cookies no longer
// match the jar was sent before the latest refresh and goes straight to the
// retry.
type RefreshTransport struct {
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Jar supplies the fresh cookies for the retry. It must be the jar of
	// the http.Client that uses this transport.
	Jar http.CookieJar

	// Refresh obtains a new access cookie.
	Refresh func(ctx context.Context) error

	// OnFailure runs once per failed refresh.
	OnFailure func(ctx context.Context, err error)

	group      singleflight.Group
	generation atomic.Uint64
}

// Generation counts successful refreshes.
func (t *RefreshTransport) Generation() uint64 { return t.generation.Load() }

func (t *RefreshTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Refresh == nil || skipsRefresh(req.URL.Path) {
		return t.base().RoundTrip(req)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	// A streamed body cannot be sent twice.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	// Read the generation before comparing cookies: a refresh finishing in
	// between either shows up in the jar or advances past gen.
	gen := t.generation.Load()
	if !t.sentStale(req) {
		if err := t.refresh(req.Context(), gen); err != nil {
			return resp, nil
		}
	}

	retry, err := t.cloneForRetry(req)
	if err != nil {
		return resp, nil
	}
	drain(resp)
	return t.base().RoundTrip(retry)
}

// refresh joins the in-flight refresh or starts one. A call made after a
// refresh newer than gen has completed returns without refreshing again.
// The refresh outlives the cancellation of whichever request started it,
// since other requests may be waiting on it.
func (t *RefreshTransport) refresh(ctx context.Context, gen uint64) error {
	ch := t.group.DoChan("refresh", func() (any, error) {
		if t.generation.Load() != gen {
			return nil, nil
		}
		rctx := context.WithoutCancel(ctx)
		if err := t.Refresh(rctx); err != nil {
			if t.OnFailure != nil {
				t.OnFailure(rctx, err)
			}
			return nil, err
		}
		t.generation.Add(1)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cloneForRetry copies req with its body rewound and its Cookie header
// rebuilt from the jar.
func (t *RefreshTransport) cloneForRetry(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	if t.Jar != nil {
		retry.Header.Del("Cookie")
		for _, c := range t.Jar.Cookies(req.URL) {
			retry.AddCookie(c)
		}
	}
	return retry, nil
}

// sentStale reports whether req carried cookies the jar has since replaced.
func (t *RefreshTransport) sentStale(req *http.Request) bool {
	if t.Jar == nil {
		return false
	}
	sent := make(map[string]string)
	for _, c := range req.Cookies() {
		sent[c.Name] = c.Value
	}
	for _, c := range t.Jar.Cookies(req.URL) {
		if v, ok := sent[c.Name]; !ok || v != c.Value {
			return true
		}
	}
	return false
}

func skipsRefresh(path string) bool {
	for _, p := range skipRefresh {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
