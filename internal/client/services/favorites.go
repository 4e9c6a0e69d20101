package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/client/repositories/favorites"
	"github.com/dmarakov/storypin/internal/common"
	"github.com/dmarakov/storypin/internal/logging"
)

// FavoriteService manages the purely local bookmark collection. Favorites
// never touch the network, so every operation works offline.
type FavoriteService struct {
	favorites favorites.Repository
	log       logging.Logger
}

func NewFavoriteService(repo favorites.Repository, log logging.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: repo,
		log:       log.With("component", "favorites"),
	}
}

// Add stores a full story snapshot so it renders without the network later.
func (f *FavoriteService) Add(ctx context.Context, story models.Story) error {
	if story.ID == "" {
		return &common.ValidationError{Problems: []string{"story id is required"}}
	}
	if err := f.favorites.Put(ctx, &story); err != nil {
		return errors.Join(common.ErrStorage, err)
	}
	return nil
}

func (f *FavoriteService) Remove(ctx context.Context, id string) error {
	if err := f.favorites.Delete(ctx, id); err != nil {
		return errors.Join(common.ErrStorage, err)
	}
	return nil
}

// List returns all favorites, re-normalized so defaults stay consistent with
// the main feed.
func (f *FavoriteService) List(ctx context.Context) ([]models.Story, error) {
	rows, err := f.favorites.GetAll(ctx)
	if err != nil {
		return nil, errors.Join(common.ErrStorage, err)
	}
	stories := make([]models.Story, len(rows))
	for i, row := range rows {
		stories[i] = models.Normalize(row.Raw())
	}
	return stories, nil
}

func (f *FavoriteService) IsFavorite(ctx context.Context, id string) (bool, error) {
	ok, err := f.favorites.Has(ctx, id)
	if err != nil {
		return false, fmt.Errorf("favorite lookup failed: %w", err)
	}
	return ok, nil
}
