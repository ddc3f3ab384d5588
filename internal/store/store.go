// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store persists users and their chat history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var (
	// ErrUserExists is returned when the username or email is already registered.
	ErrUserExists = errors.New("username or email already exists")
	// ErrNotFound is returned when a user or a session owned by the caller does not exist.
	ErrNotFound = errors.New("not found")
)

// Role identifies the author of a stored message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultSessionLimit caps the history listing.
const DefaultSessionLimit = 50

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Message is one stored chat turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is one row of the history listing.
type SessionSummary struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"msg_count"`
}

// TimestampLayout is the wire format of created_at, SQLite's CURRENT_TIMESTAMP
// form in UTC.
const TimestampLayout = time.DateTime

// MarshalJSON writes created_at in TimestampLayout.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"created_at"`
	}{plain(m), m.CreatedAt.UTC().Format(TimestampLayout)})
}

// MarshalJSON writes created_at in TimestampLayout.
func (s SessionSummary) MarshalJSON() ([]byte, error) {
	type plain SessionSummary
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"created_at"`
	}{plain(s), s.CreatedAt.UTC().Format(TimestampLayout)})
}

// Exchange is a user message and the reply it received.
type Exchange struct {
	// SessionID continues an existing session; zero starts a new one.
	SessionID int64
	UserID    int64
	User      string
	Assistant string
}

// Store is the persistence boundary of the chat service.
type Store interface {
	// CreateUser registers a user. Username and email must already be normalized.
	CreateUser(ctx context.Context, username, email, passwordHash string) (User, error)
	// UserByUsername looks up a user or returns ErrNotFound.
	UserByUsername(ctx context.Context, username string) (User, error)
	// SessionOwnedBy reports whether sessionID exists and belongs to userID.
	SessionOwnedBy(ctx context.Context, sessionID, userID int64) (bool, error)
	// SaveExchange stores both messages atomically and returns the session ID.
	// A non-zero SessionID not owned by UserID yields ErrNotFound.
	SaveExchange(ctx context.Context, ex Exchange) (int64, error)
	// ListSessions returns the newest sessions first with their message counts.
	ListSessions(ctx context.Context, userID int64, limit int) ([]SessionSummary, error)
	// SessionMessages returns the messages of a session owned by userID in
	// insertion order, or ErrNotFound.
	SessionMessages(ctx context.Context, sessionID, userID int64) ([]Message, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewStore creates a store based on the backend.
func NewStore(backend, dir string) (Store, error) {
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "sqlite":
		if dir == "" {
			return NewMemoryStore(), nil
		}
		return NewSqliteStore(filepath.Join(dir, DatabaseFile))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: sqlite, memory)", backend)
	}
}
