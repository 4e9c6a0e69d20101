// Package scheduler drives the deferred-sync queue on a fixed interval, so
// writes captured offline get replayed as soon as the API is back.
package scheduler

import (
	"context"
	"time"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/logging"
)

// DefaultInterval is how often the pending queue is replayed.
const DefaultInterval = 30 * time.Second

// runTimeout bounds one replay run so a stalled upload cannot block the loop.
const runTimeout = 5 * time.Minute

// Replayer replays queued writes. Satisfied by *services.SyncService.
type Replayer interface {
	ReplayPending(ctx context.Context) models.ReplayStats
}

// Online gates replay runs. Satisfied by *connectivity.Probe.
type Online interface {
	IsOnline(ctx context.Context) bool
}

type Scheduler struct {
	replayer Replayer
	probe    Online
	interval time.Duration
	log      logging.Logger
}

func New(replayer Replayer, probe Online, interval time.Duration, log logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		replayer: replayer,
		probe:    probe,
		interval: interval,
		log:      log.With("component", "scheduler"),
	}
}

// Start runs one replay immediately and then keeps replaying every interval
// until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info(ctx, "sync scheduler started", "interval", s.interval)

	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if !s.probe.IsOnline(ctx) {
		s.log.Debug(ctx, "still offline, skipping replay run")
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	stats := s.replayer.ReplayPending(runCtx)
	if stats.Attempted > 0 {
		s.log.Info(ctx, "replay run finished",
			"attempted", stats.Attempted, "replayed", stats.Replayed, "remaining", stats.Remaining)
	}
}
