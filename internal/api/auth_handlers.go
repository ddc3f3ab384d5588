// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/sage/internal/api/middleware"
	"github.com/ManuGH/sage/internal/auth"
	"github.com/ManuGH/sage/internal/log"
	"github.com/ManuGH/sage/internal/store"
)

type registerRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var v validator
	v.length("username", req.Username, 3, 50)
	v.length("email", req.Email, 5, 0)
	v.length("password", req.Password, 6, 72)
	if !v.ok() {
		writeValidation(w, r, v.errs)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "auth")
	username := strings.ToLower(*req.Username)
	email := strings.ToLower(*req.Email)

	hash, err := auth.HashPassword(*req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		middleware.WriteDetail(w, r, http.StatusBadRequest, "Password too long")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "auth.hash_failed").Msg("password hashing failed")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := s.deps.Store.CreateUser(r.Context(), username, email, hash); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			middleware.WriteDetail(w, r, http.StatusBadRequest, "Username or email already exists")
			return
		}
		logger.Error().Err(err).Str(log.FieldEvent, "auth.register_failed").Msg("failed to create user")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, _, err := s.deps.Issuer.Issue(username)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "auth.issue_failed").Msg("failed to issue token")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	logger.Info().Str(log.FieldEvent, "auth.registered").Str(log.FieldUsername, username).Msg("user registered")
	writeJSON(w, r, http.StatusOK, tokenResponse{AccessToken: token, TokenType: auth.TokenType})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var v validator
	v.required("username", req.Username)
	v.required("password", req.Password)
	if !v.ok() {
		writeValidation(w, r, v.errs)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "auth")
	username := strings.ToLower(*req.Username)

	user, err := s.deps.Store.UserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error().Err(err).Str(log.FieldEvent, "auth.lookup_failed").Msg("failed to look up user")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err != nil || !auth.VerifyPassword(*req.Password, user.PasswordHash) {
		logger.Info().Str(log.FieldEvent, "auth.login_failed").Msg("invalid credentials")
		middleware.WriteDetail(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, p, err := s.deps.Issuer.Issue(user.Username)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "auth.issue_failed").Msg("failed to issue token")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  p.ExpiresAt,
		MaxAge:   int(time.Until(p.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, tokenResponse{AccessToken: token, TokenType: auth.TokenType})
}

// handleLogout revokes the presented token, if any, and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.ExtractToken(r, s.cfg.CookieName); token != "" {
		if p, err := s.deps.Issuer.Parse(r.Context(), token); err == nil {
			if err := s.deps.Issuer.Revoke(r.Context(), p); err != nil {
				logger := log.WithComponentFromContext(r.Context(), "auth")
				logger.Warn().Err(err).Str(log.FieldEvent, "auth.revoke_failed").Msg("failed to revoke token")
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]string{"username": p.Username})
}

// requireAuth rejects requests without a valid bearer token or cookie.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.deps.Issuer.Parse(r.Context(), auth.ExtractToken(r, s.cfg.CookieName))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			middleware.WriteDetail(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		ctx := auth.WithPrincipal(r.Context(), p)
		ctx = log.ContextWithUsername(ctx, p.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
