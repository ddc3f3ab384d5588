// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transportOf(t *testing.T, c *http.Client) *http.Transport {
	t.Helper()
	tr, ok := c.Transport.(*http.Transport)
	require.Truef(t, ok, "transport type = %T, want *http.Transport", c.Transport)
	return tr
}

func TestNewClient_DefaultTimeoutAndTransport(t *testing.T) {
	client := NewClient(0)
	assert.Equal(t, defaultClientTimeout, client.Timeout)

	tr := transportOf(t, client)
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)
}

func TestNewClient_CapsDialAndHeaderTimeouts(t *testing.T) {
	tr := transportOf(t, NewClient(10*time.Second))
	assert.Equal(t, defaultDialTimeout, tr.TLSHandshakeTimeout)
	assert.Equal(t, defaultResponseHeaderTimeout, tr.ResponseHeaderTimeout)
}

func TestNewClient_UsesShortTimeoutAsProvided(t *testing.T) {
	want := 1500 * time.Millisecond
	client := NewClient(want)
	tr := transportOf(t, client)
	assert.Equal(t, want, client.Timeout)
	assert.Equal(t, want, tr.TLSHandshakeTimeout)
	assert.Equal(t, want, tr.ResponseHeaderTimeout)
}

func TestNewClient_ResponseHeaderOverride(t *testing.T) {
	tr := transportOf(t, NewClient(30*time.Second, WithResponseHeaderTimeout(30*time.Second)))
	assert.Equal(t, 30*time.Second, tr.ResponseHeaderTimeout)
}

func TestNewClient_Traced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(time.Second, WithTracing())
	_, plain := client.Transport.(*http.Transport)
	assert.False(t, plain, "traced client wraps the transport")

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
