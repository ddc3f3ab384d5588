// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bootstrap is the production composition root.
package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/sage/internal/api"
	"github.com/ManuGH/sage/internal/auth"
	"github.com/ManuGH/sage/internal/cache"
	"github.com/ManuGH/sage/internal/chat"
	"github.com/ManuGH/sage/internal/config"
	"github.com/ManuGH/sage/internal/daemon"
	"github.com/ManuGH/sage/internal/health"
	"github.com/ManuGH/sage/internal/llm"
	sagelog "github.com/ManuGH/sage/internal/log"
	"github.com/ManuGH/sage/internal/platform/httpx"
	"github.com/ManuGH/sage/internal/ratelimit"
	"github.com/ManuGH/sage/internal/store"
	"github.com/ManuGH/sage/internal/telemetry"
)

const readinessWatchInterval = 30 * time.Second

// Container is the production composition root output.
type Container struct {
	Config  config.AppConfig
	Logger  zerolog.Logger
	Server  *api.Server
	Manager daemon.Manager
	App     *daemon.App

	// Store is exposed for tests; it is closed by a shutdown hook.
	Store store.Store
}

// WireServices loads the configuration and builds the dependency graph.
func WireServices(ctx context.Context, version, configPath string) (*Container, error) {
	if ctx == nil {
		return nil, fmt.Errorf("wire services context is nil")
	}

	// Safe defaults until the configuration is loaded.
	sagelog.Configure(sagelog.Config{Level: "info", Service: "sage", Version: version})

	configPath = strings.TrimSpace(configPath)
	cfg, err := config.NewLoader(configPath, version).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Wire(ctx, cfg, configPath)
}

// Wire builds the container from an already loaded configuration.
func Wire(ctx context.Context, cfg config.AppConfig, configPath string) (c *Container, err error) {
	sagelog.Configure(sagelog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger := sagelog.WithComponent("bootstrap")

	if configPath != "" {
		logger.Info().Str("event", "config.loaded").Str("source", "file").Str("path", configPath).Msg("loaded configuration from file")
	} else {
		logger.Info().Str("event", "config.loaded").Str("source", "env+defaults").Msg("loaded configuration from environment and defaults")
	}
	logger.Info().Str("event", "config.snapshot").Str("sha256", fingerprint(cfg)).Msg("configuration snapshot fingerprint")

	if cfg.Auth.SecretGenerated {
		logger.Warn().
			Str("event", "auth.secret_generated").
			Msg("SAGE_JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	// Resources opened so far are released if wiring fails later on.
	var cleanups []func()
	defer func() {
		if err != nil {
			for i := len(cleanups) - 1; i >= 0; i-- {
				cleanups[i]()
			}
		}
	}()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}
	cleanups = append(cleanups, func() { _ = tp.Shutdown(context.Background()) })

	if cfg.Storage == "sqlite" && cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := store.NewStore(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	cleanups = append(cleanups, func() { _ = st.Close() })

	kv, err := cache.New(cfg.Cache.Backend, cache.RedisConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	}, sagelog.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	cleanups = append(cleanups, func() { _ = kv.Close() })

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithDenylist(auth.NewDenylist(kv)))
	if err != nil {
		return nil, fmt.Errorf("initialize token issuer: %w", err)
	}

	client := httpx.NewClient(cfg.Providers.Timeout,
		httpx.WithResponseHeaderTimeout(cfg.Providers.Timeout),
		httpx.WithTracing(),
	)
	chain, err := llm.FromConfig(cfg.Providers, client)
	if err != nil {
		return nil, fmt.Errorf("initialize completion providers: %w", err)
	}
	if chain.Len() == 0 {
		logger.Warn().Str("event", "llm.none_configured").Msg("no completion provider configured, replies use the rule-based fallback")
	} else {
		logger.Info().Strs("providers", chain.Names()).Msg("completion providers configured")
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPingChecker("store", true, st.Ping))
	hm.RegisterChecker(health.NewPingChecker("cache", cfg.Cache.Backend == "redis", kv.Ping))
	hm.RegisterChecker(health.NewProviderChecker(chain.Names))

	var limiter *ratelimit.Limiter
	if cfg.Chat.RatePerSecond > 0 {
		limiter = ratelimit.New(ratelimit.Config{
			Rate:  rate.Limit(cfg.Chat.RatePerSecond),
			Burst: cfg.Chat.Burst,
		})
	}

	srv, err := api.New(api.ConfigFrom(cfg), api.Deps{
		Store:       st,
		Issuer:      issuer,
		Responder:   chat.NewResponder(chain),
		Health:      hm,
		ChatLimiter: limiter,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize api server: %w", err)
	}

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{
		Logger:         sagelog.WithComponent("daemon"),
		APIHandler:     srv.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    cfg.MetricsListenAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("create daemon manager: %w", err)
	}

	// LIFO: telemetry is flushed first, the store closes last.
	mgr.RegisterShutdownHook("store", func(context.Context) error { return st.Close() })
	mgr.RegisterShutdownHook("cache", func(context.Context) error { return kv.Close() })
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	logger.Info().
		Str("event", "startup").
		Str("version", cfg.Version).
		Str("addr", cfg.Server.ListenAddr).
		Str("storage", cfg.Storage).
		Str("cache", cfg.Cache.Backend).
		Msg("starting sage")

	app := daemon.NewApp(logger, mgr, daemon.ReadinessWatch(hm, readinessWatchInterval, sagelog.WithComponent("readiness")))

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		Manager: mgr,
		App:     app,
		Store:   st,
	}, nil
}

// Run starts the daemon app loop and blocks until ctx is cancelled.
func (c *Container) Run(ctx context.Context) error {
	if c == nil || c.App == nil {
		return errors.New("container is not fully initialized")
	}
	return c.App.Run(ctx)
}

// fingerprint hashes the configuration without its secrets.
func fingerprint(cfg config.AppConfig) string {
	cfg.Auth.JWTSecret = ""
	cfg.Providers.OpenAI.APIKey = ""
	cfg.Providers.Groq.APIKey = ""
	cfg.Cache.RedisPassword = ""
	b, err := json.Marshal(cfg)
	if err != nil {
		return "unavailable"
	}
	return fmt.Sprintf("%x", sha256.Sum256(b))
}
