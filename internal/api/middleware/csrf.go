// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ManuGH/sage/internal/auth"
)

// CSRFProtection rejects cross-site state-changing requests that would be
// authenticated by the session cookie. Requests carrying a usable bearer
// token or no session cookie are not cookie-authenticated and pass.
//
// The request origin comes from Origin, falling back to Referer. Same-origin
// requests and allowedOrigins pass.
func CSRFProtection(cookieName string, allowedOrigins []string) func(http.Handler) http.Handler {
	originsMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originsMap[strings.TrimSuffix(origin, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isUnsafeMethod(r.Method) || !cookieAuthenticated(r, cookieName) {
				next.ServeHTTP(w, r)
				return
			}

			requestOrigin := getRequestOrigin(r)
			if requestOrigin == "" {
				WriteDetail(w, r, http.StatusForbidden, "Missing origin information")
				return
			}
			if !originsMap[requestOrigin] && !isSameOrigin(requestOrigin, r) {
				WriteDetail(w, r, http.StatusForbidden, "Cross-origin request not allowed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isUnsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

func cookieAuthenticated(r *http.Request, cookieName string) bool {
	if auth.BearerToken(r) != "" {
		return false
	}
	c, err := r.Cookie(cookieName)
	return err == nil && c.Value != ""
}

// getRequestOrigin extracts the origin from Origin, then Referer.
func getRequestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return strings.TrimSuffix(origin, "/")
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	refererURL, err := url.Parse(referer)
	if err != nil || refererURL.Host == "" {
		return ""
	}
	return refererURL.Scheme + "://" + refererURL.Host
}

// isSameOrigin checks the request origin against the target host.
func isSameOrigin(requestOrigin string, r *http.Request) bool {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	if r.Host == "" {
		return false
	}
	return requestOrigin == scheme+"://"+r.Host
}
