// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"strings"

	platformnet "github.com/ManuGH/sage/internal/platform/net"
)

// Validate checks the merged configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		add("server.listenAddr must not be empty")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdownTimeout must be positive")
	}

	switch cfg.Storage {
	case "sqlite", "memory":
	default:
		add("storage %q is not supported (supported: sqlite, memory)", cfg.Storage)
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			add("cache.redisAddr is required when cache backend is redis")
		}
	default:
		add("cache backend %q is not supported (supported: memory, redis)", cfg.Cache.Backend)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		add("auth.jwtSecret must not be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		add("auth.tokenTTL must be positive")
	}
	if strings.TrimSpace(cfg.Auth.CookieName) == "" {
		add("auth.cookieName must not be empty")
	}

	for _, p := range cfg.Providers.Chain() {
		if !p.Enabled() {
			continue
		}
		if _, err := platformnet.NormalizeEndpoint(p.BaseURL); err != nil {
			add("providers.%s.baseURL: %v", p.Name, err)
		}
		if strings.TrimSpace(p.Model) == "" {
			add("providers.%s.model must not be empty", p.Name)
		}
	}
	if cfg.Providers.Timeout <= 0 {
		add("providers.timeout must be positive")
	}
	if cfg.Server.WriteTimeout > 0 && cfg.Server.WriteTimeout <= cfg.Providers.Timeout {
		add("server.writeTimeout (%s) must exceed providers.timeout (%s)", cfg.Server.WriteTimeout, cfg.Providers.Timeout)
	}
	if cfg.Providers.MaxTokens <= 0 {
		add("providers.maxTokens must be positive")
	}
	if cfg.Providers.Temperature < 0 || cfg.Providers.Temperature > 2 {
		add("providers.temperature %.2f out of range [0,2]", cfg.Providers.Temperature)
	}

	if cfg.Chat.RatePerSecond <= 0 || cfg.Chat.Burst <= 0 {
		add("chat rate and burst must be positive")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		add("rateLimit.requestsPerMinute must be positive when enabled")
	}

	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.Exporter {
		case "grpc", "http":
		default:
			add("telemetry.exporter %q is not supported (supported: grpc, http)", cfg.Telemetry.Exporter)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
