package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"qms/core-api/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeIdentity struct {
	validateFn func(ctx context.Context, application, authorization, scope string) (identity.TokenStatus, error)
	userFn     func(ctx context.Context, application, authorization string) (identity.UserBasicData, error)
}

func (f fakeIdentity) ValidateToken(ctx context.Context, application, authorization, scope string) (identity.TokenStatus, error) {
	if f.validateFn == nil {
		return identity.TokenStatus{Valid: true, Authorized: true}, nil
	}
	return f.validateFn(ctx, application, authorization, scope)
}

func (f fakeIdentity) GetUserBasicData(ctx context.Context, application, authorization string) (identity.UserBasicData, error) {
	if f.userFn == nil {
		return identity.UserBasicData{Username: "jdoe"}, nil
	}
	return f.userFn(ctx, application, authorization)
}

// recordingHandler captures the actor the auth middleware placed in context.
type recordingHandler struct {
	called bool
	actor  string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.actor = actorFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func authRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:5000"
	req.Header.Set("api_key", "secret")
	req.Header.Set("application", "kiosk")
	req.Header.Set("authorization", "Bearer token")
	return req
}

func TestAuthMiddleware(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	cases := []struct {
		name     string
		identity fakeIdentity
		cfg      AuthConfig
		mutate   func(r *http.Request)
		status   int
		errType  string
	}{
		{
			name:   "allowed",
			cfg:    AuthConfig{AllowedAPIKeys: []string{"secret"}},
			status: http.StatusNoContent,
		},
		{
			name:   "bcrypt key",
			cfg:    AuthConfig{AllowedAPIKeys: []string{string(hashed)}},
			mutate: func(r *http.Request) { r.Header.Set("api_key", "hashed-secret") },
			status: http.StatusNoContent,
		},
		{
			name:    "missing api key",
			cfg:     AuthConfig{AllowedAPIKeys: []string{"secret"}},
			mutate:  func(r *http.Request) { r.Header.Del("api_key") },
			status:  http.StatusUnauthorized,
			errType: typeUnauthorized,
		},
		{
			name:    "wrong api key",
			cfg:     AuthConfig{AllowedAPIKeys: []string{"secret"}},
			mutate:  func(r *http.Request) { r.Header.Set("api_key", "guess") },
			status:  http.StatusUnauthorized,
			errType: typeUnauthorized,
		},
		{
			name:    "ip not allowed",
			cfg:     AuthConfig{AllowedIPs: []string{"10.0.0.2"}},
			status:  http.StatusForbidden,
			errType: typeForbidden,
		},
		{
			name: "forwarded header from untrusted peer",
			cfg:  AuthConfig{AllowedIPs: []string{"10.0.0.1"}},
			mutate: func(r *http.Request) {
				r.RemoteAddr = "203.0.113.9:4242"
				r.Header.Set("X-Forwarded-For", "10.0.0.1")
			},
			status:  http.StatusForbidden,
			errType: typeForbidden,
		},
		{
			name: "forwarded header from trusted proxy",
			cfg:  AuthConfig{AllowedIPs: []string{"203.0.113.9"}, TrustedProxies: []string{"10.0.0.1"}},
			mutate: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.9")
			},
			status: http.StatusNoContent,
		},
		{
			name:    "missing authorization",
			mutate:  func(r *http.Request) { r.Header.Del("authorization") },
			status:  http.StatusUnauthorized,
			errType: typeUnauthorized,
		},
		{
			name: "invalid token",
			identity: fakeIdentity{validateFn: func(context.Context, string, string, string) (identity.TokenStatus, error) {
				return identity.TokenStatus{}, nil
			}},
			status:  http.StatusUnauthorized,
			errType: typeUnauthorized,
		},
		{
			name: "scope missing",
			identity: fakeIdentity{validateFn: func(context.Context, string, string, string) (identity.TokenStatus, error) {
				return identity.TokenStatus{Valid: true}, nil
			}},
			status:  http.StatusForbidden,
			errType: typeForbidden,
		},
		{
			name: "identity down",
			identity: fakeIdentity{validateFn: func(context.Context, string, string, string) (identity.TokenStatus, error) {
				return identity.TokenStatus{}, identity.ErrUnavailable
			}},
			status:  http.StatusInternalServerError,
			errType: typeInternal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logger = discardLogger()
			next := &recordingHandler{}
			handler := NewAuthenticator(tc.identity, tc.cfg).Middleware(next)
			req := authRequest(http.MethodGet, "/api/v1/categories/")
			if tc.mutate != nil {
				tc.mutate(req)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.errType != "" {
				assert.False(t, next.called)
				assert.Equal(t, tc.errType, decodeEnvelope(t, rec).Type)
			}
		})
	}
}

func TestAuthMiddlewareSetsActorOnWrites(t *testing.T) {
	next := &recordingHandler{}
	handler := NewAuthenticator(fakeIdentity{}, AuthConfig{Logger: discardLogger()}).Middleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(http.MethodPost, "/api/v1/customers/"))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "jdoe", next.actor)
}

func TestAuthMiddlewareToleratesUserLookupFailure(t *testing.T) {
	next := &recordingHandler{}
	id := fakeIdentity{userFn: func(context.Context, string, string) (identity.UserBasicData, error) {
		return identity.UserBasicData{}, errors.New("timeout")
	}}
	handler := NewAuthenticator(id, AuthConfig{Logger: discardLogger()}).Middleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(http.MethodPut, "/api/v1/customers/1"))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "", next.actor)
}

func TestAuthMiddlewareSkipsPublicEndpoints(t *testing.T) {
	for _, path := range []string{"/healthz", "/metrics", "/board/info"} {
		next := &recordingHandler{}
		handler := NewAuthenticator(fakeIdentity{}, AuthConfig{AllowedAPIKeys: []string{"secret"}, Logger: discardLogger()}).Middleware(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.True(t, next.called, path)
	}
}

func TestRequiredScope(t *testing.T) {
	cases := []struct {
		method string
		path   string
		scope  string
	}{
		{http.MethodGet, "/api/v1/categories/", "read_categories"},
		{http.MethodPost, "/api/v1/categories/", "write_categories"},
		{http.MethodPatch, "/api/v1/statuses/3", "write_statuses"},
		{http.MethodGet, "/api/v1/categories/3/services", "read_services"},
		{http.MethodPost, "/api/v1/services/3/serviceturns", "write_serviceturns"},
		{http.MethodGet, "/api/v1/serviceturns/status-table", "read_serviceturns"},
		{http.MethodGet, "/api/v1/customers/3/appointments", "read_customers"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.scope, requiredScope(req), "%s %s", tc.method, tc.path)
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{IPPerMinute: 1, IPBurst: 1, AppPerMinute: 100, AppBurst: 100})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, authRequest(http.MethodGet, "/api/v1/categories/"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, authRequest(http.MethodGet, "/api/v1/categories/"))

	assert.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, typeRateLimited, decodeEnvelope(t, second).Type)
}

func TestRateLimiterIgnoresForwardedHeaderFromUntrustedPeer(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{IPPerMinute: 1, IPBurst: 1, AppPerMinute: 100, AppBurst: 100})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := authRequest(http.MethodGet, "/api/v1/categories/")
	first.Header.Set("X-Forwarded-For", "198.51.100.1")
	second := authRequest(http.MethodGet, "/api/v1/categories/")
	second.Header.Set("X-Forwarded-For", "198.51.100.2")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIP(t *testing.T) {
	proxies := newProxySet([]string{"10.0.0.1", "10.0.0.2"})
	cases := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{"peer only", "203.0.113.9:4242", "", "203.0.113.9"},
		{"untrusted peer with header", "203.0.113.9:4242", "10.0.0.5", "203.0.113.9"},
		{"trusted peer without header", "10.0.0.1:80", "", "10.0.0.1"},
		{"trusted peer with client", "10.0.0.1:80", "198.51.100.7", "198.51.100.7"},
		{"spoofed prefix before real client", "10.0.0.1:80", "1.2.3.4, 198.51.100.7", "198.51.100.7"},
		{"chain of trusted proxies", "10.0.0.1:80", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"unparseable remote addr", "pipe", "", "pipe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/categories/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			assert.Equal(t, tc.want, proxies.clientIP(req))
		})
	}
}

func TestRateLimiterPerApplication(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{IPPerMinute: 100, IPBurst: 100, AppPerMinute: 1, AppBurst: 1})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := authRequest(http.MethodGet, "/api/v1/categories/")
	second := authRequest(http.MethodGet, "/api/v1/categories/")
	second.RemoteAddr = "10.0.0.9:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(discardLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", seen)
}

func TestLoggingMiddlewareKeepsStreamingInterfaces(t *testing.T) {
	var flushed, unwrapped bool
	var hijackErr error
	handler := LoggingMiddleware(discardLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		flusher.Flush()
		flushed = true

		hijacker, ok := w.(http.Hijacker)
		require.True(t, ok)
		_, _, hijackErr = hijacker.Hijack()

		_, unwrapped = w.(interface{ Unwrap() http.ResponseWriter })
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board/info", nil))

	assert.True(t, flushed)
	assert.True(t, rec.Flushed)
	assert.ErrorIs(t, hijackErr, http.ErrNotSupported)
	assert.True(t, unwrapped)
}
