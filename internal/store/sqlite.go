package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// sqliteKV stores entries in the kv table (see assets/sql/001_kv.sql).
type sqliteKV struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps an opened, migrated sqlite handle.
func NewSQLiteStore(db *sql.DB) KV {
	return &sqliteKV{db: db, now: time.Now}
}

func (s *sqliteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value   []byte
		expires sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key=?`, key,
	).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("sqlite get", err)
	}
	if expires.Valid && expires.Int64 <= s.now().UnixMilli() {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *sqliteKV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: s.now().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv (key, value, expires_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value=excluded.value,
            expires_at=excluded.expires_at,
            updated_at=excluded.updated_at`,
		key, value, expires, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return unavailable("sqlite put", err)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has passed. Returns the number removed.
func PurgeExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, unavailable("sqlite purge", err)
	}
	return res.RowsAffected()
}
