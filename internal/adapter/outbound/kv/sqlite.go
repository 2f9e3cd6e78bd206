package kv

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
)

// SQLiteStore is a session.KVStore backed by modernc.org/sqlite, for
// deployments that need session state to survive a process restart. Rows
// are addressed by (bucket, key); bucket maps to the session store
// identifier passed to Session.Open/New, not to a separate database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) a sqlite database at dsn
// and ensures its schema exists.
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY under sqlite's
	// default journal mode; reads still serialize behind writes but
	// session traffic is dominated by point lookups, not throughput.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_entries (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (bucket, key)
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE bucket = ? AND key = ?`, bucket, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: get: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, bucket, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (bucket, key, value) VALUES (?, ?, ?)
		ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value`,
		bucket, key, value)
	if err != nil {
		return fmt.Errorf("kv: set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE bucket = ? AND key = ?`, bucket, key); err != nil {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM kv_entries WHERE bucket = ? AND key = ? LIMIT 1`, bucket, key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: exists: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) HasPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM kv_entries WHERE bucket = ? AND key LIKE ? ESCAPE '\' LIMIT 1`,
		bucket, escapeLike(prefix)+"%",
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: has prefix: %w", err)
	}
	return true, nil
}

// DeletePrefix removes every key under bucket starting with prefix.
// Session.Delete only clears the termination flag; a caller that wants the
// user-space keys of a terminated-then-deleted session reclaimed eagerly,
// rather than by a periodic sweep, can call this directly.
func (s *SQLiteStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE bucket = ? AND key LIKE ? ESCAPE '\'`,
		bucket, escapeLike(prefix)+"%")
	if err != nil {
		return fmt.Errorf("kv: delete prefix: %w", err)
	}
	return nil
}

// escapeLike escapes SQL LIKE metacharacters in a literal prefix so it is
// matched verbatim before the trailing wildcard is appended.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ session.KVStore = (*SQLiteStore)(nil)
