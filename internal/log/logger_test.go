// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestConfigure_ServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "sage-test", Version: "v9"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("unit")
	l.Info().Msg("configured")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0][FieldService] != "sage-test" {
		t.Errorf("service = %v", lines[0][FieldService])
	}
	if lines[0][FieldVersion] != "v9" {
		t.Errorf("version = %v", lines[0][FieldVersion])
	}
	if lines[0][FieldComponent] != "unit" {
		t.Errorf("component = %v", lines[0][FieldComponent])
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	Configure(Config{Level: "chatty", Output: &bytes.Buffer{}})
	t.Cleanup(func() { Configure(Config{}) })

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %v, want info", zerolog.GlobalLevel())
	}
}

func TestMiddleware_LogsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/history/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Session not found"}`))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/42", nil))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 access log line, got %d", len(lines))
	}
	entry := lines[0]
	if entry[FieldRoute] != "/api/history/{sessionID}" {
		t.Errorf("route = %v", entry[FieldRoute])
	}
	if entry[FieldStatus] != float64(http.StatusNotFound) {
		t.Errorf("status = %v", entry[FieldStatus])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}
