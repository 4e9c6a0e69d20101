package stories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE stories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  photo_url TEXT NOT NULL,
  created_at TEXT NOT NULL,
  lat REAL,
  lon REAL,
  has_location INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func lat(v float64) *float64 { return &v }

func TestPut_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := &models.Story{
		ID:          "id1",
		Name:        "Maya",
		Description: "A walk in the park",
		PhotoURL:    "https://example.com/1.jpg",
		CreatedAt:   "2025-01-01T00:00:00Z",
		Lat:         lat(-6.2),
		Lon:         lat(106.8),
	}
	require.NoError(t, r.Put(ctx, s))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id1", got[0].ID)
	assert.Equal(t, "Maya", got[0].Name)
	require.NotNil(t, got[0].Lat)
	assert.InDelta(t, -6.2, *got[0].Lat, 1e-9)

	// has_location is tagged on write
	var tagged int
	require.NoError(t, db.QueryRow(`SELECT has_location FROM stories WHERE id='id1'`).Scan(&tagged))
	assert.Equal(t, 1, tagged)
}

func TestPut_IsIdempotentUpsert(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Story{ID: "id1", Name: "v1", Description: "d", PhotoURL: "u", CreatedAt: "c"}))
	require.NoError(t, r.Put(ctx, &models.Story{ID: "id1", Name: "v2", Description: "d", PhotoURL: "u", CreatedAt: "c"}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Name)
}

func TestDelete_RemovesOnlyThatID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Story{ID: "a", Name: "n", Description: "d", PhotoURL: "u", CreatedAt: "c"}))
	require.NoError(t, r.Put(ctx, &models.Story{ID: "b", Name: "n", Description: "d", PhotoURL: "u", CreatedAt: "c"}))

	require.NoError(t, r.Delete(ctx, "a"))
	// deleting an absent id is fine
	require.NoError(t, r.Delete(ctx, "a"))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestClear_EmptiesTheSet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Story{ID: "a", Name: "n", Description: "d", PhotoURL: "u", CreatedAt: "c"}))
	require.NoError(t, r.Clear(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
