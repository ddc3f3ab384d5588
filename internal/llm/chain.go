// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package llm

import (
	"context"
	"net/http"

	"github.com/ManuGH/sage/internal/config"
	"github.com/ManuGH/sage/internal/log"
)

// Completion is a successful provider answer.
type Completion struct {
	Text     string
	Provider string
	Model    string
}

// Completer produces a completion for a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
}

// Chain asks providers in order and returns the first usable answer.
type Chain struct {
	providers []*Provider
}

// NewChain builds a chain. Nil providers are skipped.
func NewChain(providers ...*Provider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// FromConfig registers every provider that has an API key, in chain order.
// A nil client gives each provider its own traced client.
func FromConfig(cfg config.ProvidersConfig, client *http.Client) (*Chain, error) {
	var providers []*Provider
	for _, pc := range cfg.Chain() {
		if !pc.Enabled() {
			continue
		}
		p, err := NewProvider(Config{
			Name:        pc.Name,
			BaseURL:     pc.BaseURL,
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			HTTPClient:  client,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return NewChain(providers...), nil
}

// Len returns the number of registered providers.
func (c *Chain) Len() int { return len(c.providers) }

// Names lists the registered providers in order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Complete returns ErrNoCompletion when every provider failed. Individual
// failures are logged, never returned.
func (c *Chain) Complete(ctx context.Context, system, user string) (Completion, error) {
	logger := log.WithComponentFromContext(ctx, "llm")
	for _, p := range c.providers {
		text, err := p.Complete(ctx, system, user)
		if err == nil {
			return Completion{Text: text, Provider: p.Name(), Model: p.Model()}, nil
		}
		if ctx.Err() != nil {
			return Completion{}, ctx.Err()
		}
		logger.Warn().
			Err(err).
			Str(log.FieldProvider, p.Name()).
			Str(log.FieldModel, p.Model()).
			Msg("provider failed, trying next")
	}
	return Completion{}, ErrNoCompletion
}
