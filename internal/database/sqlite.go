package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // driver: sqlite
)

// DefaultSQLiteDSN is used when no counter DSN is configured.
const DefaultSQLiteDSN = "file:klausurgen.db?_pragma=busy_timeout(5000)"

// OpenSQLite opens and validates the local SQLite database used for offline runs.
func OpenSQLite(ctx context.Context, dsn string, log zerolog.Logger) (*sql.DB, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("SQLite opened")
	return db, nil
}
