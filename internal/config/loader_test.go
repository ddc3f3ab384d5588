// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SAGE_JWT_SECRET", "")
	t.Setenv("SAGE_LISTEN", "")
	cfg, err := NewLoader("", "v-test").Load()
	require.NoError(t, err)

	assert.Equal(t, "v-test", cfg.Version)
	assert.Equal(t, ":8000", cfg.Server.ListenAddr)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sage_token", cfg.Auth.CookieName)
	assert.Equal(t, DefaultOpenAIModel, cfg.Providers.OpenAI.Model)
	assert.Equal(t, DefaultGroqBaseURL, cfg.Providers.Groq.BaseURL)
	assert.Equal(t, 400, cfg.Providers.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Providers.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Providers.Timeout)

	assert.True(t, cfg.Auth.SecretGenerated, "missing secret must be generated")
	assert.Len(t, cfg.Auth.JWTSecret, 64)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dataDir: /var/lib/sage
server:
  listenAddr: ":9000"
auth:
  jwtSecret: from-file
  tokenTTL: 24h
providers:
  groq:
    apiKey: gsk-file
    model: llama-3.3-70b-versatile
  temperature: 0.2
cache:
  backend: redis
  redisAddr: localhost:6379
`)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("SAGE_JWT_SECRET", "")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sage", cfg.DataDir)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.SecretGenerated)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Providers.Groq.Enabled())
	assert.False(t, cfg.Providers.OpenAI.Enabled())
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Providers.Groq.Model)
	assert.InDelta(t, 0.2, cfg.Providers.Temperature, 1e-9)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listenAddr: ":9000"
auth:
  jwtSecret: from-file
`)
	t.Setenv("SAGE_LISTEN", ":9100")
	t.Setenv("SAGE_JWT_SECRET", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.ListenAddr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Contains(t, l.ConsumedEnvKeys, "OPENAI_API_KEY")
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, `
server:
  listenAddress: ":9000"
`)

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_MultipleDocumentsRejected(t *testing.T) {
	path := writeConfig(t, "storage: memory\n---\nstorage: sqlite\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "auth:\n  tokenTTL: forever\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.tokenTTL")
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Auth.JWTSecret = "secret"
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"empty listen", func(c *AppConfig) { c.Server.ListenAddr = " " }, "listenAddr"},
		{"bad storage", func(c *AppConfig) { c.Storage = "bolt" }, "storage"},
		{"redis without addr", func(c *AppConfig) { c.Cache.Backend = "redis" }, "redisAddr"},
		{"zero ttl", func(c *AppConfig) { c.Auth.TokenTTL = 0 }, "tokenTTL"},
		{"temperature", func(c *AppConfig) { c.Providers.Temperature = 3 }, "temperature"},
		{"relative provider url", func(c *AppConfig) {
			c.Providers.OpenAI.APIKey = "sk"
			c.Providers.OpenAI.BaseURL = "/v1"
		}, "baseURL"},
		{"write timeout below provider timeout", func(c *AppConfig) { c.Server.WriteTimeout = time.Second }, "writeTimeout"},
		{"exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "SAGE_JWT_SECRET", "SAGE_REDIS_PASSWORD", "SAGE_TOKEN_TTL"} {
		assert.True(t, IsSensitiveKey(key), key)
	}
	assert.False(t, IsSensitiveKey("SAGE_LISTEN"))
}

func TestParseList(t *testing.T) {
	t.Setenv("SAGE_CORS_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseList("SAGE_CORS_ORIGINS", nil))
}
