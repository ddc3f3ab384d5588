// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sage_chat_replies_total",
		Help: "Chat replies by source (crisis, provider, fallback) and detected topic",
	}, []string{"source", "topic"})

	crisisDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_chat_crisis_detections_total",
		Help: "Messages that matched crisis language and received helpline information",
	})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sage_provider_request_duration_seconds",
		Help:    "Completion request latency per provider and outcome",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider", "outcome"})

	chatRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_chat_rate_limited_total",
		Help: "Chat messages rejected by the per-user limiter",
	})

	historyWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sage_history_writes_total",
		Help: "Chat history persistence attempts by result",
	}, []string{"result"})
)

// RecordChatReply counts one reply by source and topic.
func RecordChatReply(source, topic string) {
	chatReplies.WithLabelValues(source, topic).Inc()
}

// RecordCrisisDetection counts one crisis-screened message.
func RecordCrisisDetection() {
	crisisDetections.Inc()
}

// ObserveProviderRequest records the duration of one completion attempt.
// outcome is one of "ok", "error", "empty", "circuit_open".
func ObserveProviderRequest(provider, outcome string, d time.Duration) {
	providerRequestDuration.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

// RecordChatRateLimited counts one rejected chat message.
func RecordChatRateLimited() {
	chatRateLimited.Inc()
}

// RecordHistoryWrite counts one history persistence attempt ("ok", "error", "skipped").
func RecordHistoryWrite(result string) {
	historyWrites.WithLabelValues(result).Inc()
}
