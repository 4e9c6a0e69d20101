// Package cacheworker implements the offline cache worker: a small caching
// proxy with an install/activate lifecycle, a versioned SQLite response
// cache, and a push-notification listener.
package cacheworker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmarakov/storypin/internal/cacheworker/migrations"
	"github.com/dmarakov/storypin/internal/common"
	"github.com/dmarakov/storypin/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// CachedResponse is one stored HTTP response, keyed by (cache name, URL).
type CachedResponse struct {
	CacheName   string
	URL         string
	Status      int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

// CacheStore is the versioned response cache. Entries under different cache
// names coexist until activation sweeps the stale ones.
type CacheStore struct {
	db dbx.DBTX
}

func NewCacheStore(db dbx.DBTX) *CacheStore {
	return &CacheStore{db: db}
}

// OpenStore opens (and migrates) the worker's own cache database. The worker
// shares nothing with the client process; this is a separate file.
func OpenStore(ctx context.Context, dsn string) (*sql.DB, *CacheStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, NewCacheStore(db), nil
}

func (s *CacheStore) Put(ctx context.Context, r *CachedResponse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (cache_name, url, status, content_type, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_name, url) DO UPDATE SET
			status = excluded.status,
			content_type = excluded.content_type,
			body = excluded.body,
			stored_at = excluded.stored_at
	`, r.CacheName, r.URL, r.Status, r.ContentType, r.Body, r.StoredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to cache response for %s: %w", r.URL, err)
	}
	return nil
}

// Get returns the cached response for url, or common.ErrNotFound on a miss.
func (s *CacheStore) Get(ctx context.Context, cacheName, url string) (*CachedResponse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status, content_type, body, stored_at
		FROM responses WHERE cache_name = ? AND url = ?
	`, cacheName, url)

	r := CachedResponse{CacheName: cacheName, URL: url}
	var storedAt string
	err := row.Scan(&r.Status, &r.ContentType, &r.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache for %s: %w", url, err)
	}
	r.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
	return &r, nil
}

// DeleteOtherCaches removes every entry whose cache name differs from keep.
// This is the activation sweep that retires previous cache versions.
func (s *CacheStore) DeleteOtherCaches(ctx context.Context, keep string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE cache_name != ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale caches: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *CacheStore) Clear(ctx context.Context, cacheName string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE cache_name = ?`, cacheName)
	if err != nil {
		return fmt.Errorf("failed to clear cache %s: %w", cacheName, err)
	}
	return nil
}
