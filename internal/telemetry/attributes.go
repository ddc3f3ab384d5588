// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	ChatTopicKey     = "chat.topic"
	ChatSourceKey    = "chat.source"
	ChatCrisisKey    = "chat.crisis"
	ChatSessionIDKey = "chat.session_id"

	ProviderNameKey    = "llm.provider"
	ProviderModelKey   = "llm.model"
	ProviderOutcomeKey = "llm.outcome"

	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ChatAttributes describes a produced reply.
func ChatAttributes(topic, source string, crisis bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ChatSourceKey, source),
		attribute.Bool(ChatCrisisKey, crisis),
	}
	if topic != "" {
		attrs = append(attrs, attribute.String(ChatTopicKey, topic))
	}
	return attrs
}

// ProviderAttributes describes an outbound completion call.
func ProviderAttributes(name, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ProviderNameKey, name),
		attribute.String(ProviderModelKey, model),
	}
}

// ErrorAttributes tags a span with an error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ErrorTypeKey, errorType),
	}
}
