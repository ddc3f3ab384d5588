// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	sagesqlite "github.com/ManuGH/sage/internal/persistence/sqlite"
)

// DatabaseFile is the file name of the chat database inside the data directory.
const DatabaseFile = "sage.sqlite"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewSqliteStore opens (and migrates) the database at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("chat store: create data dir: %w", err)
	}

	db, err := sagesqlite.Open(dbPath, sagesqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chat store: migrations fs: %w", err)
	}
	if _, err := sagesqlite.Migrate(context.Background(), db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chat store: migration failed: %w", err)
	}

	return &SqliteStore{DB: db, now: time.Now}, nil
}

func (s *SqliteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func (s *SqliteStore) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	created := s.timestamp()
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		username, email, passwordHash, created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    parseTime(created),
	}, nil
}

func (s *SqliteStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	var created string
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (s *SqliteStore) SessionOwnedBy(ctx context.Context, sessionID, userID int64) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM chat_sessions WHERE id = ? AND user_id = ?", sessionID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select session: %w", err)
	}
	return true, nil
}

func (s *SqliteStore) SaveExchange(ctx context.Context, ex Exchange) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sessionID := ex.SessionID
	if sessionID == 0 {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chat_sessions (user_id, created_at) VALUES (?, ?)", ex.UserID, s.timestamp(),
		)
		if err != nil {
			return 0, fmt.Errorf("insert session: %w", err)
		}
		if sessionID, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("insert session: %w", err)
		}
	} else {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM chat_sessions WHERE id = ? AND user_id = ?", sessionID, ex.UserID,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("select session: %w", err)
		}
	}

	for _, m := range []Message{
		{Role: RoleUser, Content: ex.User},
		{Role: RoleAssistant, Content: ex.Assistant},
	} {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)",
			sessionID, string(m.Role), m.Content, s.timestamp(),
		); err != nil {
			return 0, fmt.Errorf("insert %s message: %w", m.Role, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return sessionID, nil
}

func (s *SqliteStore) ListSessions(ctx context.Context, userID int64, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	rows, err := s.DB.QueryContext(ctx, `
	SELECT s.id, s.created_at,
	       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id) AS msg_count
	FROM chat_sessions s
	WHERE s.user_id = ?
	ORDER BY s.created_at DESC, s.id DESC
	LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]SessionSummary, 0)
	for rows.Next() {
		var sum SessionSummary
		var created string
		if err := rows.Scan(&sum.ID, &created, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.CreatedAt = parseTime(created)
		sessions = append(sessions, sum)
	}
	return sessions, rows.Err()
}

func (s *SqliteStore) SessionMessages(ctx context.Context, sessionID, userID int64) ([]Message, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT m.role, m.content, m.created_at
	FROM messages m
	JOIN chat_sessions s ON m.session_id = s.id
	WHERE s.id = ? AND s.user_id = ?
	ORDER BY m.id`, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var role, created string
		if err := rows.Scan(&role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs, nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
