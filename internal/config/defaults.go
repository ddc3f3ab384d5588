// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

const (
	defaultListenAddr      = ":8000"
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second

	defaultTokenTTL   = 7 * 24 * time.Hour
	defaultCookieName = "sage_token"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultGroqModel     = "llama-3.1-8b-instant"

	defaultProviderTimeout = 30 * time.Second
	defaultMaxTokens       = 400
	defaultTemperature     = 0.7

	defaultChatRate  = 0.5 // one message every two seconds
	defaultChatBurst = 5

	defaultRequestsPerMinute = 600
)

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    "data",
		Storage:    "sqlite",
		LogLevel:   "info",
		LogService: "sage",
		Server: ServerConfig{
			ListenAddr:      defaultListenAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: defaultRequestsPerMinute,
		},
		Auth: AuthConfig{
			TokenTTL:   defaultTokenTTL,
			CookieName: defaultCookieName,
		},
		Providers: ProvidersConfig{
			OpenAI:      ProviderConfig{Name: "openai", BaseURL: DefaultOpenAIBaseURL, Model: DefaultOpenAIModel},
			Groq:        ProviderConfig{Name: "groq", BaseURL: DefaultGroqBaseURL, Model: DefaultGroqModel},
			Timeout:     defaultProviderTimeout,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		},
		Chat: ChatConfig{
			RatePerSecond: defaultChatRate,
			Burst:         defaultChatBurst,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
