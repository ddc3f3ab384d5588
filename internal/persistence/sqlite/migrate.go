// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Migrate applies all pending goose migrations found at the root of fsys.
// It returns the number of migrations applied.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) (int, error) {
	provider, err := goose.NewProvider(database.DialectSQLite3, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return len(results), nil
}
