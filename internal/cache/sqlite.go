package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createQuestionCacheTable = `
CREATE TABLE IF NOT EXISTS question_cache (
	cache_key TEXT PRIMARY KEY,
	questions TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps entries in a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createQuestionCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get retrieves a question list.
func (c *SQLiteStore) Get(ctx context.Context, key string) ([]string, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT questions FROM question_cache WHERE cache_key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return questions, true, nil
}

// Put stores a question list, replacing any previous entry.
func (c *SQLiteStore) Put(ctx context.Context, key string, questions []string) error {
	body, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO question_cache (cache_key, questions, created_at) VALUES (?, ?, ?)`,
		key, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Len returns the number of entries.
func (c *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (c *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM question_cache`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *SQLiteStore) Close() error {
	return c.db.Close()
}
