package favorites

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/models"
)

// Repository is the favorited-stories record set. It is fully independent of
// the cached-stories set: a story may live in both, and removal from one
// never touches the other.
type Repository interface {
	Put(ctx context.Context, story *models.Story) error
	GetAll(ctx context.Context) ([]models.Story, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error

	// Has reports whether id is favorited.
	Has(ctx context.Context, id string) (bool, error)
}
