// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/sage/internal/api/middleware"
	"github.com/ManuGH/sage/internal/auth"
)

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		AllowedOrigins:        s.cfg.CORSOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         s.cfg.EnableMetrics,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
		CSRFCookie:            s.cfg.CookieName,
		RequestsPerMinute:     s.cfg.RequestsPerMinute,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteDetail(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteDetail(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/health", s.handleHealth)
		r.Get("/about", s.handleAbout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.With(middleware.KeyedRateLimit(s.deps.ChatLimiter, principalKey)).
				Post("/chat", s.handleChat)
			r.Get("/history", s.handleHistory)
			r.Get("/history/{sessionID}", s.handleSessionMessages)
			r.Get("/me", s.handleMe)
		})
	})

	s.pages.mount(r)
	return r
}

// principalKey keys the chat limiter by username.
func principalKey(r *http.Request) string {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return ""
	}
	return p.Username
}
