package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarakov/storypin/internal/client/scheduler"
	"github.com/spf13/cobra"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay stories queued while offline",
		Long:  "sync submits every queued story to the API. A queued entry is removed only after the server confirmed it; failures stay queued for the next run. With --watch it keeps replaying on an interval until interrupted.",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if watch {
				if interval == 0 {
					interval = app.Config.Sync.Interval
				}
				s := scheduler.New(app.Sync, app.Probe, interval, app.Log)
				err := s.Start(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			stats := app.Sync.ReplayPending(ctx)
			if stats.Attempted == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing queued.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d of %d queued stories (%d remaining)\n",
				stats.Replayed, stats.Attempted, stats.Remaining)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep replaying on an interval")
	cmd.Flags().DurationVar(&interval, "interval", 0, "replay interval for --watch (default from config)")
	return cmd
}
