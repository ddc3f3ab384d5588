// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ServiceName: "sage"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording(), "noop tracer spans do not record")
	span.End()

	assert.NoError(t, provider.Shutdown(context.Background()))
	assert.NoError(t, provider.ForceFlush(context.Background()))
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ServiceName: "sage", ExporterType: "invalid"})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: invalid (supported: grpc, http)", err.Error())
}

func TestNewProvider_InMemoryExporter(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	provider, err := NewProvider(context.Background(), Config{
		Enabled:        true,
		ServiceName:    "sage",
		ServiceVersion: "test",
		SamplingRate:   1.0,
		Exporter:       exp,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = NewProvider(context.Background(), Config{})
	})

	_, span := Tracer("test").Start(context.Background(), "chat.reply")
	span.SetAttributes(ChatAttributes("anxiety", "fallback", false)...)
	span.End()

	require.NoError(t, provider.ForceFlush(context.Background()))
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "chat.reply", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String(ChatTopicKey, "anxiety"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", sampler(1.0).Description())
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	assert.NoError(t, p.Shutdown(context.Background()))
}
