// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package chat turns a user message into Sage's reply: crisis screening,
// provider completions, and empathetic rule-based fallbacks.
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/sage/internal/llm"
	"github.com/ManuGH/sage/internal/log"
	"github.com/ManuGH/sage/internal/metrics"
	"github.com/ManuGH/sage/internal/telemetry"
)

// Source records how a reply was produced.
const (
	SourceCrisis   = "crisis"
	SourceFallback = "fallback"
	sourceProvider = "provider:"
)

// Reply is Sage's answer to one message.
type Reply struct {
	Text        string
	Suggestions []string
	// Source is "crisis", "fallback" or "provider:<name>".
	Source string
	// Topic is empty for crisis replies.
	Topic Topic
}

// Random is the randomness the fallback path draws from.
type Random interface {
	IntN(n int) int
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// Responder produces replies. A nil completer always falls back.
type Responder struct {
	completer llm.Completer
	mu        sync.Mutex
	rnd       Random
	tracer    trace.Tracer
}

// Option configures a Responder.
type Option func(*Responder)

// WithRandom replaces the random source, used by tests.
func WithRandom(r Random) Option {
	return func(rs *Responder) {
		if r != nil {
			rs.rnd = r
		}
	}
}

func NewResponder(completer llm.Completer, opts ...Option) *Responder {
	r := &Responder{
		completer: completer,
		rnd:       globalRandom{},
		tracer:    telemetry.Tracer("sage/chat"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond never fails: provider errors degrade to the fallback reply.
func (r *Responder) Respond(ctx context.Context, msg string) Reply {
	ctx, span := r.tracer.Start(ctx, "chat.respond")
	defer span.End()

	reply := r.respond(ctx, msg)

	span.SetAttributes(telemetry.ChatAttributes(string(reply.Topic), reply.Source, reply.Source == SourceCrisis)...)
	metricTopic := string(reply.Topic)
	if reply.Source == SourceCrisis {
		metricTopic = SourceCrisis
	}
	metrics.RecordChatReply(reply.Source, metricTopic)
	return reply
}

func (r *Responder) respond(ctx context.Context, msg string) Reply {
	if IsCrisis(msg) {
		metrics.RecordCrisisDetection()
		logger := log.WithComponentFromContext(ctx, "chat")
		logger.Warn().
			Str(log.FieldEvent, "chat.crisis_detected").
			Msg("crisis language detected, returning helplines")
		return Reply{
			Text:        CrisisMessage,
			Suggestions: append([]string(nil), crisisSuggestions...),
			Source:      SourceCrisis,
		}
	}

	topic := DetectTopic(msg)
	if r.completer != nil {
		c, err := r.completer.Complete(ctx, SystemPrompt, msg)
		if err == nil && c.Text != "" {
			return Reply{
				Text:        c.Text,
				Suggestions: append([]string(nil), providerSuggestions...),
				Source:      sourceProvider + c.Provider,
				Topic:       topic,
			}
		}
		if err != nil && !errors.Is(err, llm.ErrNoCompletion) {
			logger := log.WithComponentFromContext(ctx, "chat")
			logger.Debug().Err(err).Msg("completion unavailable")
		}
	}
	return r.Fallback(msg)
}

// Fallback builds the rule-based reply for msg.
func (r *Responder) Fallback(msg string) Reply {
	topic := DetectTopic(msg)
	responses := topicResponses[topic]

	r.mu.Lock()
	text := responses[r.rnd.IntN(len(responses))]
	if reflection := ShortReflection(msg); reflection != "" && r.rnd.Float64() < 0.5 {
		tmpl := reflectionTemplates[r.rnd.IntN(len(reflectionTemplates))]
		text = fmt.Sprintf(tmpl, reflection) + text
	}
	r.mu.Unlock()

	return Reply{
		Text:        text,
		Suggestions: Suggestions(topic),
		Source:      SourceFallback,
		Topic:       topic,
	}
}
