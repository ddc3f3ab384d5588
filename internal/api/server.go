// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the Sage HTTP surface: authentication, chat, history
// and the browser pages.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/sage/internal/auth"
	"github.com/ManuGH/sage/internal/chat"
	"github.com/ManuGH/sage/internal/config"
	"github.com/ManuGH/sage/internal/health"
	"github.com/ManuGH/sage/internal/ratelimit"
	"github.com/ManuGH/sage/internal/store"
)

// ServiceName is reported by /api/health and /api/about.
const ServiceName = "Sage"

// Responder produces the reply to one chat message.
type Responder interface {
	Respond(ctx context.Context, msg string) chat.Reply
}

// Config is the HTTP-facing subset of the application configuration.
type Config struct {
	Version string
	WebRoot string

	CookieName   string
	CookieSecure bool

	CORSOrigins       []string
	RequestsPerMinute int
	EnableMetrics     bool
	TracingService    string
}

// ConfigFrom derives the server configuration from the application config.
func ConfigFrom(cfg config.AppConfig) Config {
	c := Config{
		Version:       cfg.Version,
		WebRoot:       cfg.WebRoot,
		CookieName:    cfg.Auth.CookieName,
		CookieSecure:  cfg.Auth.CookieSecure,
		CORSOrigins:   cfg.CORSOrigins,
		EnableMetrics: true,
	}
	if cfg.RateLimit.Enabled {
		c.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	}
	if cfg.Telemetry.Enabled {
		c.TracingService = cfg.LogService
	}
	return c
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store     store.Store
	Issuer    *auth.Issuer
	Responder Responder
	Health    *health.Manager
	// ChatLimiter throttles /api/chat per user; nil disables it.
	ChatLimiter *ratelimit.Limiter
}

// Server owns the router and its dependencies.
type Server struct {
	cfg    Config
	deps   Deps
	pages  *pages
	router chi.Router
}

// New validates deps, loads pages from the web root and builds the router.
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("api: store is required")
	case deps.Issuer == nil:
		return nil, errors.New("api: token issuer is required")
	case deps.Responder == nil:
		return nil, errors.New("api: responder is required")
	}
	if deps.Health == nil {
		deps.Health = health.NewManager(cfg.Version)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = auth.DefaultCookieName
	}

	p, err := loadPages(cfg.WebRoot, pageData{Version: cfg.Version, Disclaimer: chat.Disclaimer})
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, deps: deps, pages: p}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
