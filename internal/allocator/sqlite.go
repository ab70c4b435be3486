package allocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kasusid_counter (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  last_value INTEGER NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite keeps the counter in a single-row table of a local SQLite database.
type SQLite struct {
	db *sql.DB
	// mu serialises allocations from this process; SQLite itself only
	// guarantees isolation between connections once a write lock is taken.
	mu sync.Mutex
}

// NewSQLite ensures the counter table exists and returns the allocator.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("%w: create counter table: %v", ErrStorageUnavailable, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.next(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return next, nil
}

func (s *SQLite) next(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT last_value FROM kasusid_counter WHERE id = 1`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kasusid_counter (id, last_value) VALUES (1, ?)`, Start); err != nil {
			return 0, fmt.Errorf("init counter: %w", err)
		}
		current = Start
	case err != nil:
		return 0, fmt.Errorf("read counter: %w", err)
	}

	next := current + 1
	if _, err := tx.ExecContext(ctx,
		`UPDATE kasusid_counter SET last_value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`, next); err != nil {
		return 0, fmt.Errorf("write counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}
