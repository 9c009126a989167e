package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	"github.com/halcyonlabs/site-gateway/internal/service"
)

// newTestRouter wires a full router against an in-process upstream.
func newTestRouter(t *testing.T, backend http.HandlerFunc) http.Handler {
	return newTestRouterWithLimit(t, backend, rate.Limit(100), 100)
}

func newTestRouterWithLimit(t *testing.T, backend http.HandlerFunc, perSecond rate.Limit, burst int) http.Handler {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := upstream.NewClient(upstream.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	codec := newRealCodec(t)
	return NewRouter(RouterServices{
		Auth: &fakeAuthService{
			LoginWithCredentialsFunc: func(_ context.Context, email, password string) (*service.LoginResult, error) {
				return adminResult(), nil
			},
		},
		Codec:              codec,
		Upstream:           client,
		Cookies:            CookieWriter{Secure: true},
		CORS:               CORS{Origin: "http://localhost:5000"},
		LoginRatePerSecond: perSecond,
		LoginBurst:         burst,
	})
}

func okBackend(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true}`))
}

func TestRouter_UnauthenticatedIsAlways401(t *testing.T) {
	router := newTestRouter(t, okBackend)

	// Admin-gated routes without a session must report 401, never 403:
	// the role gate is only evaluated after authentication.
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/5"},
		{http.MethodDelete, "/api/users/5"},
		{http.MethodGet, "/api/products"},
		{http.MethodPost, "/api/products"},
		{http.MethodDelete, "/api/orders/3"},
		{http.MethodGet, "/api/projects"},
		{http.MethodPut, "/api/team/2"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_UserRoleBlockedFromAdminRoutes(t *testing.T) {
	router := newTestRouter(t, okBackend)
	codec := newRealCodec(t)
	cookie := mintCookie(t, codec, domainauth.Principal{ID: "7", Email: "u@b.com", Role: domainauth.RoleUser})

	adminOnly := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodDelete, "/api/users/5"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/orders/3"},
	}
	for _, tc := range adminOnly {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_UserRoleCanRead(t *testing.T) {
	router := newTestRouter(t, okBackend)
	codec := newRealCodec(t)
	cookie := mintCookie(t, codec, domainauth.Principal{ID: "7", Email: "u@b.com", Role: domainauth.RoleUser})

	reads := []string{"/api/products", "/api/orders", "/api/projects", "/api/team", "/api/users/7"}
	for _, path := range reads {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_AdminCanWrite(t *testing.T) {
	router := newTestRouter(t, okBackend)
	codec := newRealCodec(t)
	cookie := mintCookie(t, codec, domainauth.Principal{ID: "1", Email: "a@b.com", Role: domainauth.RoleAdmin})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/5", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginFlow(t *testing.T) {
	router := newTestRouter(t, okBackend)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@b.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, "http://localhost:5000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Preflights(t *testing.T) {
	router := newTestRouter(t, okBackend)

	cases := []struct {
		path    string
		methods string
	}{
		{"/api/auth/login", "POST, OPTIONS"},
		{"/api/auth/profile", "GET, OPTIONS"},
		{"/api/users", "GET, OPTIONS"},
		{"/api/users/5", "GET, PUT, DELETE, OPTIONS"},
		{"/api/products", "GET, POST, OPTIONS"},
		{"/api/products/1", "GET, PUT, DELETE, OPTIONS"},
		{"/api/team/2", "GET, PUT, DELETE, OPTIONS"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodOptions, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Empty(t, rec.Body.String(), tc.path)
		assert.Equal(t, tc.methods, rec.Header().Get("Access-Control-Allow-Methods"), tc.path)
	}
}

// Cross-origin callers can only read a rejection if the CORS headers are on
// it, so auth-gate and rate-limit failures must carry them too.
func TestRouter_GateFailuresCarryCORSHeaders(t *testing.T) {
	router := newTestRouter(t, okBackend)
	codec := newRealCodec(t)
	userCookie := mintCookie(t, codec, domainauth.Principal{ID: "7", Email: "u@b.com", Role: domainauth.RoleUser})

	cases := []struct {
		name       string
		method     string
		path       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{"missing session", http.MethodGet, "/api/users/5", nil, http.StatusUnauthorized},
		{"missing session on profile", http.MethodGet, "/api/auth/profile", nil, http.StatusUnauthorized},
		{"wrong role", http.MethodDelete, "/api/users/5", userCookie, http.StatusForbidden},
		{"wrong role on business write", http.MethodPost, "/api/products", userCookie, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "http://localhost:5000", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, "Origin", rec.Header().Get("Vary"))
		})
	}
}

func TestRouter_RateLimitedLoginCarriesCORSHeaders(t *testing.T) {
	router := newTestRouterWithLimit(t, okBackend, rate.Limit(0.001), 1)

	var rec *httptest.ResponseRecorder
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"a@b.com","password":"secret"}`))
		req.RemoteAddr = "198.51.100.9:5000"
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "http://localhost:5000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_GoogleCodeFlowDisabledWithoutProvider(t *testing.T) {
	router := newTestRouter(t, okBackend)

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, okBackend)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
