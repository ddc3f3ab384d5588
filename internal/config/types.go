// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the fully merged and validated runtime configuration.
type AppConfig struct {
	Version string

	DataDir string
	Storage string // sqlite | memory
	WebRoot string // directory holding templates/ and static/; empty disables pages

	LogLevel   string
	LogService string

	Server            ServerConfig
	MetricsListenAddr string // empty disables the metrics listener
	CORSOrigins       []string
	RateLimit         RateLimitConfig

	Auth      AuthConfig
	Providers ProvidersConfig
	Chat      ChatConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// It must exceed the provider timeout, otherwise slow completions are cut off.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

// RateLimitConfig configures the global per-IP request limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

// AuthConfig configures password and token handling.
type AuthConfig struct {
	JWTSecret string
	// SecretGenerated is set when no secret was configured and a random one was created.
	SecretGenerated bool
	TokenTTL        time.Duration
	CookieName      string
	CookieSecure    bool
}

// ProviderConfig describes one OpenAI-compatible completion endpoint.
type ProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled reports whether the provider has credentials.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// ProvidersConfig holds the ordered provider chain and shared request parameters.
type ProvidersConfig struct {
	OpenAI      ProviderConfig
	Groq        ProviderConfig
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Chain returns the providers in the order they are consulted.
func (p ProvidersConfig) Chain() []ProviderConfig {
	return []ProviderConfig{p.OpenAI, p.Groq}
}

// ChatConfig configures the per-user chat limiter.
type ChatConfig struct {
	RatePerSecond float64
	Burst         int
}

// CacheConfig selects the key/value cache backing the token denylist.
type CacheConfig struct {
	Backend       string // memory | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string // grpc | http
	Endpoint     string
	SamplingRate float64
}

// FileConfig is the on-disk YAML representation.
// Durations are Go duration strings ("30s", "168h").
type FileConfig struct {
	DataDir           string   `yaml:"dataDir,omitempty"`
	Storage           string   `yaml:"storage,omitempty"`
	WebRoot           string   `yaml:"webRoot,omitempty"`
	LogLevel          string   `yaml:"logLevel,omitempty"`
	MetricsListenAddr string   `yaml:"metricsListenAddr,omitempty"`
	CORSOrigins       []string `yaml:"corsOrigins,omitempty"`

	Server struct {
		ListenAddr      string `yaml:"listenAddr,omitempty"`
		ReadTimeout     string `yaml:"readTimeout,omitempty"`
		WriteTimeout    string `yaml:"writeTimeout,omitempty"`
		IdleTimeout     string `yaml:"idleTimeout,omitempty"`
		ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
	} `yaml:"server,omitempty"`

	RateLimit struct {
		Enabled           *bool `yaml:"enabled,omitempty"`
		RequestsPerMinute int   `yaml:"requestsPerMinute,omitempty"`
	} `yaml:"rateLimit,omitempty"`

	Auth struct {
		JWTSecret    string `yaml:"jwtSecret,omitempty"`
		TokenTTL     string `yaml:"tokenTTL,omitempty"`
		CookieName   string `yaml:"cookieName,omitempty"`
		CookieSecure *bool  `yaml:"cookieSecure,omitempty"`
	} `yaml:"auth,omitempty"`

	Providers struct {
		OpenAI      FileProvider `yaml:"openai,omitempty"`
		Groq        FileProvider `yaml:"groq,omitempty"`
		Timeout     string       `yaml:"timeout,omitempty"`
		MaxTokens   int          `yaml:"maxTokens,omitempty"`
		Temperature *float64     `yaml:"temperature,omitempty"`
	} `yaml:"providers,omitempty"`

	Chat struct {
		RatePerSecond float64 `yaml:"ratePerSecond,omitempty"`
		Burst         int     `yaml:"burst,omitempty"`
	} `yaml:"chat,omitempty"`

	Cache struct {
		Backend       string `yaml:"backend,omitempty"`
		RedisAddr     string `yaml:"redisAddr,omitempty"`
		RedisPassword string `yaml:"redisPassword,omitempty"`
		RedisDB       int    `yaml:"redisDB,omitempty"`
	} `yaml:"cache,omitempty"`

	Telemetry struct {
		Enabled      *bool    `yaml:"enabled,omitempty"`
		Exporter     string   `yaml:"exporter,omitempty"`
		Endpoint     string   `yaml:"endpoint,omitempty"`
		SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	} `yaml:"telemetry,omitempty"`
}

// FileProvider is the YAML shape of a provider block.
type FileProvider struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseURL,omitempty"`
	Model   string `yaml:"model,omitempty"`
}
