package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReplayer struct {
	runs atomic.Int32
}

func (c *countingReplayer) ReplayPending(context.Context) models.ReplayStats {
	c.runs.Add(1)
	return models.ReplayStats{}
}

type fixedProbe struct{ online bool }

func (f fixedProbe) IsOnline(context.Context) bool { return f.online }

func TestStart_RunsImmediatelyThenOnTicks(t *testing.T) {
	replayer := &countingReplayer{}
	s := New(replayer, fixedProbe{online: true}, 10*time.Millisecond, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		return replayer.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStart_SkipsRunsWhileOffline(t *testing.T) {
	replayer := &countingReplayer{}
	s := New(replayer, fixedProbe{online: false}, 5*time.Millisecond, logging.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = s.Start(ctx)

	assert.Zero(t, replayer.runs.Load())
}

func TestNew_DefaultsInterval(t *testing.T) {
	s := New(&countingReplayer{}, fixedProbe{online: true}, 0, logging.Nop{})
	assert.Equal(t, DefaultInterval, s.interval)
}
