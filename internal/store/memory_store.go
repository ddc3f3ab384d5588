// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memorySession struct {
	id       int64
	userID   int64
	created  time.Time
	messages []Message
}

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]User
	sessions map[int64]*memorySession
	nextUser int64
	nextSess int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		users:    make(map[string]User),
		sessions: make(map[int64]*memorySession),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return User{}, ErrUserExists
		}
	}
	m.nextUser++
	u := User{
		ID:           m.nextUser,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    m.now().UTC(),
	}
	m.users[username] = u
	return u, nil
}

func (m *MemoryStore) UserByUsername(ctx context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) SessionOwnedBy(ctx context.Context, sessionID, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return ok && s.userID == userID, nil
}

func (m *MemoryStore) SaveExchange(ctx context.Context, ex Exchange) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var sess *memorySession
	if ex.SessionID == 0 {
		m.nextSess++
		sess = &memorySession{id: m.nextSess, userID: ex.UserID, created: m.now().UTC()}
		m.sessions[sess.id] = sess
	} else {
		s, ok := m.sessions[ex.SessionID]
		if !ok || s.userID != ex.UserID {
			return 0, ErrNotFound
		}
		sess = s
	}

	sess.messages = append(sess.messages,
		Message{Role: RoleUser, Content: ex.User, CreatedAt: m.now().UTC()},
		Message{Role: RoleAssistant, Content: ex.Assistant, CreatedAt: m.now().UTC()},
	)
	return sess.id, nil
}

func (m *MemoryStore) ListSessions(ctx context.Context, userID int64, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionSummary, 0)
	for _, s := range m.sessions {
		if s.userID != userID {
			continue
		}
		out = append(out, SessionSummary{ID: s.id, CreatedAt: s.created, MessageCount: len(s.messages)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) SessionMessages(ctx context.Context, sessionID, userID int64) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.userID != userID || len(s.messages) == 0 {
		return nil, ErrNotFound
	}
	return append([]Message(nil), s.messages...), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Close() error { return nil }
