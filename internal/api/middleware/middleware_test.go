// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sage/internal/ratelimit"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRecoverer(t *testing.T) {
	h := RequestID(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeDetail(t, rec)
	assert.Equal(t, "Internal server error", body.Detail)
	assert.NotEmpty(t, body.RequestID)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(HeaderRequestID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id\n"+strings.Repeat("x", 200))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36, "invalid ids are replaced with a uuid")
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://sage.example"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Origin", "https://sage.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://sage.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://sage.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS_WildcardOmitsCredentials(t *testing.T) {
	h := CORS([]string{"*"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://evil.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	h = CORS([]string{"*", "https://sage.example"})(http.HandlerFunc(okHandler))
	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Origin", "https://sage.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCSRFProtection(t *testing.T) {
	h := CSRFProtection("sage_token", nil)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		method string
		cookie bool
		authz  string
		origin string
		want   int
	}{
		{"safe method", http.MethodGet, true, "", "", http.StatusOK},
		{"no cookie", http.MethodPost, false, "", "", http.StatusOK},
		{"bearer wins", http.MethodPost, true, "Bearer tok", "https://evil.example", http.StatusOK},
		{"basic auth falls back to cookie", http.MethodPost, true, "Basic dTpw", "https://evil.example", http.StatusForbidden},
		{"empty bearer falls back to cookie", http.MethodPost, true, "Bearer ", "https://evil.example", http.StatusForbidden},
		{"cookie without origin", http.MethodPost, true, "", "", http.StatusForbidden},
		{"cookie cross origin", http.MethodPost, true, "", "https://evil.example", http.StatusForbidden},
		{"cookie same origin", http.MethodPost, true, "", "http://example.com", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/chat", nil)
			req.Host = "example.com"
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: "sage_token", Value: "tok"})
			}
			if tt.authz != "" {
				req.Header.Set("Authorization", tt.authz)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCSRFProtection_RefererFallback(t *testing.T) {
	h := CSRFProtection("sage_token", []string{"https://app.example"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.Host = "api.example"
	req.AddCookie(&http.Cookie{Name: "sage_token", Value: "tok"})
	req.Header.Set("Referer", "https://app.example/history")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders("")(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, DefaultCSP, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Minute})(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			assert.Contains(t, decodeDetail(t, rec).Detail, "Too many requests")
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestKeyedRateLimit(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Rate: 0.001, Burst: 1})
	h := KeyedRateLimit(l, func(r *http.Request) string {
		return r.Header.Get("X-User")
	})(http.HandlerFunc(okHandler))

	do := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("alice").Code)
	rec := do("alice")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, do("bob").Code)
	assert.Equal(t, http.StatusOK, do("").Code, "requests without a key are not limited")
	assert.Equal(t, http.StatusOK, do("").Code)
}

func TestStack_RoutePatternInMetricsAndLogs(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        "sage-test",
		EnableLogging:         true,
		CSRFCookie:            "sage_token",
		RequestsPerMinute:     100,
	})
	r.Get("/api/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history/{id}", routePattern(r))
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
