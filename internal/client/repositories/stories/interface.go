package stories

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/models"
)

// Repository is the cached-stories record set, keyed by story id.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Put upserts a story by id. Re-putting the same id overwrites.
	Put(ctx context.Context, story *models.Story) error

	// GetAll returns every cached story. The result is a fresh slice; callers
	// may mutate it freely.
	GetAll(ctx context.Context) ([]models.Story, error)

	// Delete removes a story by id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every cached story.
	Clear(ctx context.Context) error
}
