// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the browser session cookie.
const DefaultCookieName = "sage_token"

// BearerToken returns the token of a usable "Authorization: Bearer" header,
// or "" when there is none.
func BearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ExtractToken retrieves the bearer token from the request.
// 1. Authorization: Bearer <token>
// 2. Cookie: cookieName
func ExtractToken(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if t := BearerToken(r); t != "" {
		return t
	}

	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
