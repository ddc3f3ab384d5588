// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error shape returned by every endpoint.
type ErrorBody struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteDetail writes {"detail": detail} with status. The request ID set by
// RequestID is echoed for support correlation.
func WriteDetail(w http.ResponseWriter, _ *http.Request, status int, detail string) {
	body := ErrorBody{Detail: detail, RequestID: w.Header().Get(HeaderRequestID)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
