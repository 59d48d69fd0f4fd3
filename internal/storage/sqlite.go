package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    k TEXT PRIMARY KEY,
    v BLOB NOT NULL,
    expires_at INTEGER,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kv_expires ON kv(expires_at);
`

// SQLite is a Store backed by a single sqlite kv table
type SQLite struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the sqlite database at path
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Migrate creates the kv table
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT v FROM kv WHERE k = ? AND (expires_at IS NULL OR expires_at > ?)`
	err := s.db.GetContext(ctx, &value, query, key, time.Now().Unix())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *int64
	if ttl > 0 {
		ts := time.Now().Add(ttl).Unix()
		expiresAt = &ts
	}

	query := `
		INSERT INTO kv (k, v, expires_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, expires_at = excluded.expires_at, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, expiresAt, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	// Escape LIKE metacharacters so a prefix like "user_" stays literal
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	var keys []string
	query := `SELECT k FROM kv WHERE k LIKE ? ESCAPE '\' AND (expires_at IS NULL OR expires_at > ?) ORDER BY k`
	err := s.db.SelectContext(ctx, &keys, query, escaped+"%", time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list keys %q: %w", prefix, err)
	}
	return keys, nil
}

// PurgeExpired removes rows whose TTL has passed. Expired rows are
// already invisible to Get/Keys; this just reclaims space.
func (s *SQLite) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
