package authsdk_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/shopfront/pkg/authsdk"
)

// fakeAuth mimics the cookie contract of the auth service: one valid access
// token at a time, rotated by the refresh endpoint.
type fakeAuth struct {
	mu          sync.Mutex
	access      string
	refresh     string
	generation  int
	failRefresh bool
	refreshWait time.Duration

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
}

func newFakeAuth(t *testing.T) (*fakeAuth, *httptest.Server) {
	t.Helper()

	f := &fakeAuth{refresh: "refresh-token"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("POST /api/auth/logout", f.logout)
	mux.HandleFunc("POST /api/auth/refreshToken", f.refreshToken)
	mux.HandleFunc("GET /api/auth/profile", f.profile)
	mux.HandleFunc("POST /api/cart", f.cart)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

// expire invalidates the current access token without telling the client.
func (f *fakeAuth) expire() {
	f.mu.Lock()
	f.access = "expired-" + f.access
	f.mu.Unlock()
}

func (f *fakeAuth) setFailRefresh(v bool) {
	f.mu.Lock()
	f.failRefresh = v
	f.mu.Unlock()
}

func (f *fakeAuth) setRefreshWait(d time.Duration) {
	f.mu.Lock()
	f.refreshWait = d
	f.mu.Unlock()
}

func (f *fakeAuth) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: "/", MaxAge: maxAge, HttpOnly: true})
}

func (f *fakeAuth) authorized(r *http.Request) bool {
	ck, err := r.Cookie("accessToken")
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return ck.Value == f.access
}

func (f *fakeAuth) login(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Password != "secret123" {
		writeErr(w, authsdk.ErrInvalidCredentials)
		return
	}

	f.mu.Lock()
	f.access = "access-0"
	f.mu.Unlock()

	f.setCookie(w, "accessToken", "access-0", 900)
	f.setCookie(w, "refreshToken", f.refresh, 3600)
	writeJSON(w, http.StatusOK, authsdk.UserProfile{ID: "u1", Name: "Ada", Email: req.Email, Role: "customer"})
}

func (f *fakeAuth) logout(w http.ResponseWriter, r *http.Request) {
	f.logoutCalls.Add(1)
	f.setCookie(w, "accessToken", "", -1)
	f.setCookie(w, "refreshToken", "", -1)
	writeJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out successfully"})
}

func (f *fakeAuth) refreshToken(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	f.mu.Lock()
	wait := f.refreshWait
	f.mu.Unlock()
	time.Sleep(wait)

	ck, err := r.Cookie("refreshToken")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil || ck.Value != f.refresh || f.failRefresh {
		writeErr(w, authsdk.ErrUnauthorized.WithMessage("Invalid refresh token"))
		return
	}

	f.generation++
	f.access = "access-" + strconv.Itoa(f.generation)
	f.setCookie(w, "accessToken", f.access, 900)
	writeJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Token refreshed successfully"})
}

func (f *fakeAuth) profile(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		writeErr(w, authsdk.ErrUnauthorized.WithMessage("Unauthorized - Access token expired"))
		return
	}
	writeJSON(w, http.StatusOK, authsdk.UserProfile{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: "customer"})
}

// cart echoes the body so replay after a refresh is observable.
func (f *fakeAuth) cart(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		writeErr(w, authsdk.ErrUnauthorized)
		return
	}
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, e *authsdk.APIError) {
	writeJSON(w, e.StatusCode, authsdk.ErrorResponse{Error: e.Code, Message: e.Message})
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}
