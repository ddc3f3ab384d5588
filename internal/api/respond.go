// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/ManuGH/sage/internal/log"
)

const maxBodyBytes = 64 << 10

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldEvent, "response.encode_error").Msg("failed to encode response")
	}
}

// FieldError is one entry of a 422 validation body.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type validationBody struct {
	Detail []FieldError `json:"detail"`
}

func writeValidation(w http.ResponseWriter, r *http.Request, errs []FieldError) {
	writeJSON(w, r, http.StatusUnprocessableEntity, validationBody{Detail: errs})
}

// decodeBody reads a JSON body of at most maxBodyBytes. Unknown fields are
// ignored. On failure the 422 response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid JSON body"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			msg = "Request body too large"
		}
		writeValidation(w, r, []FieldError{{Loc: []string{"body"}, Msg: msg, Type: "json_invalid"}})
		return false
	}
	return true
}

// validator collects field errors for one request body.
type validator struct {
	errs []FieldError
}

func (v *validator) add(field, msg, typ string) {
	v.errs = append(v.errs, FieldError{Loc: []string{"body", field}, Msg: msg, Type: typ})
}

// required reports whether value is present.
func (v *validator) required(field string, value *string) bool {
	if value == nil {
		v.add(field, "Field required", "missing")
		return false
	}
	return true
}

// length checks the character count of value. max <= 0 means unbounded.
func (v *validator) length(field string, value *string, min, max int) {
	if !v.required(field, value) {
		return
	}
	n := utf8.RuneCountInString(*value)
	if n < min {
		v.add(field, "String should have at least "+strconv.Itoa(min)+" characters", "string_too_short")
		return
	}
	if max > 0 && n > max {
		v.add(field, "String should have at most "+strconv.Itoa(max)+" characters", "string_too_long")
	}
}

func (v *validator) ok() bool { return len(v.errs) == 0 }
