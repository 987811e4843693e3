// Package sqlite stores the offline queue in an on-device SQLite file using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const backendName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// KVStore is a SQLite-backed domain.KeyValueStore.
type KVStore struct {
	db *sql.DB
}

var (
	_ domain.KeyValueStore = (*KVStore)(nil)
	_ domain.Swapper       = (*KVStore)(nil)
)

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*KVStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &KVStore{db: db}, nil
}

func (s *KVStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.RecordKVOperation(backendName, "get", "miss")
			return "", false, nil
		}
		metrics.RecordKVOperation(backendName, "get", "error")
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "get", "hit")
	return value, true, nil
}

func (s *KVStore) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		metrics.RecordKVOperation(backendName, "set", "error")
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "set", "ok")
	return nil
}

// CompareAndSwap writes value only while key still holds old. SQLite
// serialises writers across connections and processes, so the conditional
// statement is atomic.
func (s *KVStore) CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if oldFound {
		res, err = s.db.ExecContext(ctx, `
			UPDATE kv_store SET value = ?, updated_at = CURRENT_TIMESTAMP
			WHERE key = ? AND value = ?`,
			value, key, old,
		)
	} else {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO NOTHING`,
			key, value,
		)
	}
	if err != nil {
		metrics.RecordKVOperation(backendName, "cas", "error")
		return false, fmt.Errorf("failed to swap %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		metrics.RecordKVOperation(backendName, "cas", "error")
		return false, fmt.Errorf("failed to swap %s: %w", key, err)
	}
	if n == 0 {
		metrics.RecordKVOperation(backendName, "cas", "conflict")
		return false, nil
	}

	metrics.RecordKVOperation(backendName, "cas", "ok")
	return true, nil
}

// Ping checks the database is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *KVStore) Close() error {
	return s.db.Close()
}
