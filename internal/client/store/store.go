// Package store owns the local SQLite database: it opens the handle once,
// applies the additive schema migrations, and bundles the record-set
// repositories for injection into services.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmarakov/storypin/internal/client/migrations"
	"github.com/dmarakov/storypin/internal/client/repositories/favorites"
	"github.com/dmarakov/storypin/internal/client/repositories/pending"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/client/repositories/stories"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store is the process-wide local-store handle: opened once at startup,
// passed explicitly to every component that needs persistence.
type Store struct {
	DB        *sql.DB
	Stories   stories.Repository
	Favorites favorites.Repository
	Pending   pending.Repository
	Session   session.Repository
}

// RunMigrations brings the schema to the current version. Each migration only
// creates record sets that are missing; existing data is never transformed.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens the database at dsn, migrates it, and wires the repositories.
func Open(ctx context.Context, dsn string) (*Store, error) {
	// File-backed databases need their directory to exist before the driver
	// can create the file.
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer connection: serializes local transactions and keeps
	// in-memory databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		DB:        db,
		Stories:   stories.NewSQLiteRepository(db),
		Favorites: favorites.NewSQLiteRepository(db),
		Pending:   pending.NewSQLiteRepository(db),
		Session:   session.NewSQLiteRepository(db),
	}, nil
}

// Close releases the database handle. Only process shutdown should call it.
func (s *Store) Close() error {
	return s.DB.Close()
}
