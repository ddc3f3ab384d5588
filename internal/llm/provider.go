// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package llm calls OpenAI-compatible chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/sage/internal/metrics"
	"github.com/ManuGH/sage/internal/platform/httpx"
	platformnet "github.com/ManuGH/sage/internal/platform/net"
	"github.com/ManuGH/sage/internal/resilience"
	"github.com/ManuGH/sage/internal/telemetry"
)

var (
	// ErrNoCompletion is returned when no provider produced usable text.
	ErrNoCompletion = errors.New("no completion available")
	// ErrEmptyCompletion is returned when a provider answered without content.
	ErrEmptyCompletion = errors.New("empty completion")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion request status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion request status %d: %s", e.StatusCode, e.Body)
}

// Config configures one provider.
type Config struct {
	Name        string
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
	// Breaker overrides the default breaker (3 failures, 30s reset).
	Breaker *resilience.CircuitBreaker
}

// Provider is one OpenAI-compatible completion endpoint.
type Provider struct {
	name        string
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	breaker     *resilience.CircuitBreaker
	tracer      trace.Tracer
}

// NewProvider validates cfg and builds a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	name := strings.TrimSpace(cfg.Name)
	switch {
	case name == "":
		return nil, errors.New("provider name is required")
	case strings.TrimSpace(cfg.BaseURL) == "":
		return nil, fmt.Errorf("provider %s: base url is required", name)
	case strings.TrimSpace(cfg.APIKey) == "":
		return nil, fmt.Errorf("provider %s: api key is required", name)
	case strings.TrimSpace(cfg.Model) == "":
		return nil, fmt.Errorf("provider %s: model is required", name)
	}
	base, err := platformnet.NormalizeEndpoint(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = httpx.NewClient(timeout, httpx.WithResponseHeaderTimeout(timeout), httpx.WithTracing())
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("llm_"+name, 3, 30*time.Second)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	return &Provider{
		name:        name,
		endpoint:    base + "/chat/completions",
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      client,
		breaker:     breaker,
		tracer:      telemetry.Tracer("sage/llm"),
	}, nil
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt and the user message and returns the
// trimmed first choice.
func (p *Provider) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.ProviderAttributes(p.name, p.model)...),
	)
	defer span.End()

	start := time.Now()
	var text string
	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		text, err = p.do(ctx, system, user)
		return err
	})

	outcome := outcomeOf(err)
	metrics.ObserveProviderRequest(p.name, outcome, time.Since(start))
	span.SetAttributes(attribute.String(telemetry.ProviderOutcomeKey, outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return "", fmt.Errorf("provider %s: %w", p.name, err)
	}
	return text, nil
}

func (p *Provider) do(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var payload completionResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(payload.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func outcomeOf(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &se):
		return fmt.Sprintf("status_%dxx", se.StatusCode/100)
	default:
		return "error"
	}
}
