// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"
)

func mergeFile(cfg *AppConfig, f *FileConfig) error {
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.Storage, f.Storage)
	setString(&cfg.WebRoot, f.WebRoot)
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.MetricsListenAddr, f.MetricsListenAddr)
	if len(f.CORSOrigins) > 0 {
		cfg.CORSOrigins = append([]string(nil), f.CORSOrigins...)
	}

	setString(&cfg.Server.ListenAddr, f.Server.ListenAddr)
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.readTimeout", f.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{"server.writeTimeout", f.Server.WriteTimeout, &cfg.Server.WriteTimeout},
		{"server.idleTimeout", f.Server.IdleTimeout, &cfg.Server.IdleTimeout},
		{"server.shutdownTimeout", f.Server.ShutdownTimeout, &cfg.Server.ShutdownTimeout},
		{"auth.tokenTTL", f.Auth.TokenTTL, &cfg.Auth.TokenTTL},
		{"providers.timeout", f.Providers.Timeout, &cfg.Providers.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if f.RateLimit.Enabled != nil {
		cfg.RateLimit.Enabled = *f.RateLimit.Enabled
	}
	setInt(&cfg.RateLimit.RequestsPerMinute, f.RateLimit.RequestsPerMinute)

	setString(&cfg.Auth.JWTSecret, f.Auth.JWTSecret)
	setString(&cfg.Auth.CookieName, f.Auth.CookieName)
	if f.Auth.CookieSecure != nil {
		cfg.Auth.CookieSecure = *f.Auth.CookieSecure
	}

	mergeProvider(&cfg.Providers.OpenAI, f.Providers.OpenAI)
	mergeProvider(&cfg.Providers.Groq, f.Providers.Groq)
	setInt(&cfg.Providers.MaxTokens, f.Providers.MaxTokens)
	if f.Providers.Temperature != nil {
		cfg.Providers.Temperature = *f.Providers.Temperature
	}

	if f.Chat.RatePerSecond > 0 {
		cfg.Chat.RatePerSecond = f.Chat.RatePerSecond
	}
	setInt(&cfg.Chat.Burst, f.Chat.Burst)

	setString(&cfg.Cache.Backend, f.Cache.Backend)
	setString(&cfg.Cache.RedisAddr, f.Cache.RedisAddr)
	setString(&cfg.Cache.RedisPassword, f.Cache.RedisPassword)
	setInt(&cfg.Cache.RedisDB, f.Cache.RedisDB)

	if f.Telemetry.Enabled != nil {
		cfg.Telemetry.Enabled = *f.Telemetry.Enabled
	}
	setString(&cfg.Telemetry.Exporter, f.Telemetry.Exporter)
	setString(&cfg.Telemetry.Endpoint, f.Telemetry.Endpoint)
	if f.Telemetry.SamplingRate != nil {
		cfg.Telemetry.SamplingRate = *f.Telemetry.SamplingRate
	}
	return nil
}

func mergeProvider(dst *ProviderConfig, f FileProvider) {
	setString(&dst.APIKey, f.APIKey)
	setString(&dst.BaseURL, f.BaseURL)
	setString(&dst.Model, f.Model)
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.DataDir = l.envString("SAGE_DATA", cfg.DataDir)
	cfg.Storage = l.envString("SAGE_STORAGE", cfg.Storage)
	cfg.WebRoot = l.envString("SAGE_WEB_ROOT", cfg.WebRoot)
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("LOG_SERVICE", cfg.LogService)
	cfg.MetricsListenAddr = l.envString("SAGE_METRICS_LISTEN", cfg.MetricsListenAddr)
	cfg.CORSOrigins = l.envList("SAGE_CORS_ORIGINS", cfg.CORSOrigins)

	cfg.Server.ListenAddr = l.envString("SAGE_LISTEN", cfg.Server.ListenAddr)
	cfg.Server.ShutdownTimeout = l.envDuration("SAGE_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.RateLimit.Enabled = l.envBool("SAGE_RATELIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = l.envInt("SAGE_RATELIMIT_RPM", cfg.RateLimit.RequestsPerMinute)

	cfg.Auth.JWTSecret = l.envString("SAGE_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = l.envDuration("SAGE_TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.CookieSecure = l.envBool("SAGE_COOKIE_SECURE", cfg.Auth.CookieSecure)

	cfg.Providers.OpenAI.APIKey = l.envString("OPENAI_API_KEY", cfg.Providers.OpenAI.APIKey)
	cfg.Providers.OpenAI.BaseURL = l.envString("SAGE_OPENAI_BASE_URL", cfg.Providers.OpenAI.BaseURL)
	cfg.Providers.OpenAI.Model = l.envString("SAGE_OPENAI_MODEL", cfg.Providers.OpenAI.Model)
	cfg.Providers.Groq.APIKey = l.envString("GROQ_API_KEY", cfg.Providers.Groq.APIKey)
	cfg.Providers.Groq.BaseURL = l.envString("SAGE_GROQ_BASE_URL", cfg.Providers.Groq.BaseURL)
	cfg.Providers.Groq.Model = l.envString("SAGE_GROQ_MODEL", cfg.Providers.Groq.Model)
	cfg.Providers.Timeout = l.envDuration("SAGE_PROVIDER_TIMEOUT", cfg.Providers.Timeout)

	cfg.Chat.RatePerSecond = l.envFloat("SAGE_CHAT_RATE", cfg.Chat.RatePerSecond)
	cfg.Chat.Burst = l.envInt("SAGE_CHAT_BURST", cfg.Chat.Burst)

	cfg.Cache.Backend = l.envString("SAGE_CACHE", cfg.Cache.Backend)
	cfg.Cache.RedisAddr = l.envString("SAGE_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString("SAGE_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt("SAGE_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Telemetry.Enabled = l.envBool("SAGE_TRACING_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("SAGE_TRACING_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("SAGE_TRACING_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("SAGE_TRACING_SAMPLING", cfg.Telemetry.SamplingRate)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
