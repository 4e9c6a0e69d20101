package store

import (
	"context"
	"testing"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndWiresAllRecordSets(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// Every record set exists and is usable after migration.
	require.NoError(t, s.Stories.Put(ctx, &models.Story{ID: "s1", Name: "n", Description: "d", PhotoURL: "u", CreatedAt: "c"}))
	require.NoError(t, s.Favorites.Put(ctx, &models.Story{ID: "s1", Name: "n", Description: "d", PhotoURL: "u", CreatedAt: "c"}))
	require.NoError(t, s.Pending.Put(ctx, &models.PendingStory{ID: "p1", PhotoData: []byte{1}}))
	require.NoError(t, s.Session.Set(ctx, "token", "tok"))

	// Stories and favorites are independent sets.
	require.NoError(t, s.Favorites.Delete(ctx, "s1"))
	cached, err := s.Stories.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "removing a favorite must not remove the cached story")
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// A second run against an up-to-date schema is a no-op.
	require.NoError(t, RunMigrations(ctx, s.DB))
}
