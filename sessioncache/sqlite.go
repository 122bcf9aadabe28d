package sessioncache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// SQLite is a SessionCache persisted to a local SQLite file, the durable
// analog of an instance's origin-local storage. Survives process restarts.
type SQLite struct {
	db *sql.DB
}

// Compile-time assertion that SQLite implements SessionCache.
var _ types.SessionCache = (*SQLite)(nil)

// NewSQLite opens (or creates) the cache database at path.
//
// Parameters:
//   - path: SQLite database file path
//
// Returns:
//   - *SQLite: The cache
//   - error: Open or schema error
func NewSQLite(path string) (*SQLite, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open session cache: %w", err)
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS session_cache(
	  k          TEXT PRIMARY KEY,
	  session_id TEXT    NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session cache table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Load returns the cached session id, or "" when nothing is cached.
func (c *SQLite) Load(ctx context.Context) (string, error) {
	var sessionID string
	err := c.db.QueryRowContext(ctx,
		`SELECT session_id FROM session_cache WHERE k = 'current'`).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load cached session: %w", err)
	}

	return sessionID, nil
}

// Store persists the session id, replacing any previous value.
func (c *SQLite) Store(ctx context.Context, sessionID string) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO session_cache(k, session_id, updated_at) VALUES('current', ?, ?)
	ON CONFLICT(k) DO UPDATE SET session_id = excluded.session_id, updated_at = excluded.updated_at
	`, sessionID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (c *SQLite) Close() error {
	return c.db.Close()
}
