// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/sage/internal/api/middleware"
	"github.com/ManuGH/sage/internal/auth"
	"github.com/ManuGH/sage/internal/chat"
	"github.com/ManuGH/sage/internal/log"
	"github.com/ManuGH/sage/internal/metrics"
	"github.com/ManuGH/sage/internal/store"
	"github.com/ManuGH/sage/internal/version"
)

const sessionNotFound = "Session not found"

type chatRequest struct {
	Message   *string `json:"message"`
	SessionID *int64  `json:"session_id"`
}

type chatResponse struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
	// SessionID is null when the exchange was not stored.
	SessionID *int64 `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var v validator
	v.length("message", req.Message, 1, 2000)
	if req.SessionID != nil && *req.SessionID <= 0 {
		v.add("session_id", "Input should be greater than 0", "greater_than")
	}
	if !v.ok() {
		writeValidation(w, r, v.errs)
		return
	}

	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "chat")
	p, _ := auth.PrincipalFromContext(ctx)

	user, err := s.deps.Store.UserByUsername(ctx, p.Username)
	userMissing := errors.Is(err, store.ErrNotFound)
	if err != nil && !userMissing {
		logger.Error().Err(err).Str(log.FieldEvent, "chat.user_lookup_failed").Msg("failed to look up user")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	var sessionID int64
	if req.SessionID != nil {
		sessionID = *req.SessionID
		owned := false
		if !userMissing {
			owned, err = s.deps.Store.SessionOwnedBy(ctx, sessionID, user.ID)
			if err != nil {
				logger.Error().Err(err).Str(log.FieldEvent, "chat.session_lookup_failed").Msg("failed to look up session")
				middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}
		}
		if !owned {
			middleware.WriteDetail(w, r, http.StatusNotFound, sessionNotFound)
			return
		}
	}

	reply := s.deps.Responder.Respond(ctx, *req.Message)
	resp := chatResponse{Response: reply.Text, Suggestions: reply.Suggestions}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}

	if userMissing {
		metrics.RecordHistoryWrite("skipped")
		logger.Warn().Str(log.FieldEvent, "chat.user_missing").Msg("authenticated user no longer exists, reply not stored")
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	stored, err := s.deps.Store.SaveExchange(ctx, store.Exchange{
		SessionID: sessionID,
		UserID:    user.ID,
		User:      *req.Message,
		Assistant: reply.Text,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordHistoryWrite("error")
		middleware.WriteDetail(w, r, http.StatusNotFound, sessionNotFound)
		return
	case err != nil:
		// The reply is still delivered; only the history entry is lost.
		metrics.RecordHistoryWrite("error")
		logger.Error().Err(err).Str(log.FieldEvent, "chat.history_write_failed").Msg("failed to store exchange")
	default:
		metrics.RecordHistoryWrite("ok")
		resp.SessionID = &stored
		logger.Debug().
			Str(log.FieldEvent, "chat.exchange_stored").
			Int64(log.FieldSessionID, stored).
			Str(log.FieldSource, reply.Source).
			Str(log.FieldTopic, string(reply.Topic)).
			Msg("exchange stored")
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, _ := auth.PrincipalFromContext(ctx)
	logger := log.WithComponentFromContext(ctx, "history")

	sessions := []store.SessionSummary{}
	user, err := s.deps.Store.UserByUsername(ctx, p.Username)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		logger.Error().Err(err).Str(log.FieldEvent, "history.user_lookup_failed").Msg("failed to look up user")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	default:
		list, err := s.deps.Store.ListSessions(ctx, user.ID, store.DefaultSessionLimit)
		if err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "history.list_failed").Msg("failed to list sessions")
			middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		if list != nil {
			sessions = list
		}
	}
	writeJSON(w, r, http.StatusOK, map[string][]store.SessionSummary{"sessions": sessions})
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		writeValidation(w, r, []FieldError{{
			Loc:  []string{"path", "session_id"},
			Msg:  "Input should be a valid integer",
			Type: "int_parsing",
		}})
		return
	}

	ctx := r.Context()
	p, _ := auth.PrincipalFromContext(ctx)
	logger := log.WithComponentFromContext(ctx, "history")

	user, err := s.deps.Store.UserByUsername(ctx, p.Username)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteDetail(w, r, http.StatusNotFound, sessionNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "history.user_lookup_failed").Msg("failed to look up user")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	msgs, err := s.deps.Store.SessionMessages(ctx, sessionID, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteDetail(w, r, http.StatusNotFound, sessionNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "history.messages_failed").Int64(log.FieldSessionID, sessionID).Msg("failed to load messages")
		middleware.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]store.Message{"messages": msgs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
}

type aboutResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Disclaimer  string `json:"disclaimer"`
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	v := s.cfg.Version
	if v == "" {
		v = version.Version
	}
	writeJSON(w, r, http.StatusOK, aboutResponse{
		Name:        ServiceName,
		Version:     v,
		Description: "AI-powered mental health support chatbot",
		Disclaimer:  chat.Disclaimer,
	})
}
