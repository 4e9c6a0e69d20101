// Package cli implements the storypin command-line interface.
package cli

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/config"
	"github.com/dmarakov/storypin/internal/client/connectivity"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/client/services"
	"github.com/dmarakov/storypin/internal/client/store"
	"github.com/dmarakov/storypin/internal/logging"
)

// The command layer depends on these narrow views of the services, so tests
// can substitute fakes without a database or a network.

type storyReader interface {
	GetAllStories(ctx context.Context, p api.ListParams) *models.StoryList
	GetStoriesWithLocation(ctx context.Context, p api.ListParams) *models.StoryList
	GetFeaturedStories(ctx context.Context, limit int) (*models.StoryList, error)
	GetStoryDetail(ctx context.Context, id string) (*models.Story, error)
	AddStory(ctx context.Context, draft models.StoryDraft) (*services.AddResult, error)
}

type authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) bool
	SessionExpired(ctx context.Context) bool
}

type favoriter interface {
	Add(ctx context.Context, story models.Story) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Story, error)
	IsFavorite(ctx context.Context, id string) (bool, error)
}

type replayer interface {
	ReplayPending(ctx context.Context) models.ReplayStats
}

type notifier interface {
	Subscribe(ctx context.Context, sub api.Subscription) error
	Unsubscribe(ctx context.Context, endpoint string) error
}

// App bundles everything a command needs. Bootstrap builds the real one;
// tests assemble their own.
type App struct {
	Config  *config.Config
	Stories storyReader
	Auth    authenticator
	Faves   favoriter
	Sync    replayer
	Notify  notifier
	Probe   *connectivity.Probe
	Log     logging.Logger

	close func() error
}

// Bootstrap loads configuration, opens the local store, and wires the full
// service graph. The returned App must be Closed when the command finishes.
func Bootstrap(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := logging.NewDefault(cfg.LogLevel)

	st, err := store.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	client := api.NewHTTPClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(uint64(cfg.API.Retry.MaxAttempts), cfg.API.Retry.InitialBackoff),
	)

	tokenFn := func(ctx context.Context) string {
		token, err := st.Session.Get(ctx, session.TokenKey)
		if err != nil {
			return ""
		}
		return token
	}
	probe := connectivity.NewProbe(client, tokenFn)

	return &App{
		Config:  cfg,
		Stories: services.NewStoryService(client, st.Stories, st.Pending, st.Session, probe, log),
		Auth:    services.NewAuthService(client, st.Session, log),
		Faves:   services.NewFavoriteService(st.Favorites, log),
		Sync:    services.NewSyncService(client, st.Pending, st.Session, log),
		Notify:  services.NewNotificationService(client, st.Session, log),
		Probe:   probe,
		Log:     log,
		close:   st.Close,
	}, nil
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
