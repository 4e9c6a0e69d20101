package pending

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/models"
)

// Repository is the deferred-write queue: story drafts captured while the API
// was unreachable, keyed by a client-generated id. An entry leaves the queue
// only after a confirmed remote success.
type Repository interface {
	Put(ctx context.Context, story *models.PendingStory) error

	// GetAll returns queued writes in enqueue order.
	GetAll(ctx context.Context) ([]models.PendingStory, error)

	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
