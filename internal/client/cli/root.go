package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags plus the app factory, which tests override
// to inject a pre-wired App.
type rootOptions struct {
	configPath string

	newApp func(ctx context.Context) (*App, error)
}

// NewRootCommand builds the storypin command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	opts.newApp = func(ctx context.Context) (*App, error) {
		return Bootstrap(ctx, opts.configPath)
	}

	cmd := &cobra.Command{
		Use:           "storypin",
		Short:         "Location-tagged stories, offline-first",
		Long:          "storypin browses and publishes location-tagged stories, staying usable when the API is unreachable: reads fall back to the local store and writes queue for deferred sync.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newListCommand(opts),
		newDetailCommand(opts),
		newFeaturedCommand(opts),
		newAddCommand(opts),
		newFavoritesCommand(opts),
		newSyncCommand(opts),
		newNotifyCommand(opts),
	)

	return cmd
}

// withApp wires an App for the duration of one command run.
func withApp(opts *rootOptions, run func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := opts.newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		return run(ctx, app, cmd, args)
	}
}
