package services

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/client/repositories/pending"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/logging"
)

// SyncService replays writes queued while the API was unreachable.
type SyncService struct {
	client  api.Client
	pending pending.Repository
	session session.Repository
	log     logging.Logger
}

func NewSyncService(
	client api.Client,
	pendingRepo pending.Repository,
	sessionRepo session.Repository,
	log logging.Logger,
) *SyncService {
	return &SyncService{
		client:  client,
		pending: pendingRepo,
		session: sessionRepo,
		log:     log.With("component", "sync"),
	}
}

// ReplayPending submits every queued story, one at a time, with the current
// auth token. An entry is deleted only after its POST succeeded; failed
// entries stay queued for the next run. The method is fire-and-forget: it
// reports stats and never raises.
func (s *SyncService) ReplayPending(ctx context.Context) models.ReplayStats {
	queued, err := s.pending.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "cannot read pending queue", "error", err)
		return models.ReplayStats{}
	}
	if len(queued) == 0 {
		return models.ReplayStats{}
	}

	token, err := s.session.Get(ctx, session.TokenKey)
	if err != nil {
		s.log.Warn(ctx, "cannot read session token, replaying as guest", "error", err)
		token = ""
	}

	stats := models.ReplayStats{Attempted: len(queued)}
	for _, item := range queued {
		if err := s.submit(ctx, item, token); err != nil {
			s.log.Warn(ctx, "replay failed, keeping entry queued",
				"pending_id", item.ID, "error", err)
			stats.Remaining++
			continue
		}

		// Delete strictly after the confirmed remote success.
		if err := s.pending.Delete(ctx, item.ID); err != nil {
			s.log.Error(ctx, "replayed story could not be dequeued",
				"pending_id", item.ID, "error", err)
			stats.Remaining++
			continue
		}
		stats.Replayed++
	}

	s.log.Info(ctx, "deferred sync finished",
		"attempted", stats.Attempted, "replayed", stats.Replayed, "remaining", stats.Remaining)
	return stats
}

func (s *SyncService) submit(ctx context.Context, item models.PendingStory, token string) error {
	draft := item.Draft()
	if token != "" {
		return s.client.AddStory(ctx, draft, token)
	}
	return s.client.AddStoryGuest(ctx, draft)
}
