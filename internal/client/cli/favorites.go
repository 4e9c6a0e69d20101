package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage bookmarked stories (fully local)",
	}

	add := &cobra.Command{
		Use:   "add <story-id>",
		Short: "Bookmark a story for offline reading",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			story, err := app.Stories.GetStoryDetail(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.Faves.Add(ctx, *story); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Favorited %s\n", story.ID)
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <story-id>",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := app.Faves.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List bookmarked stories",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			stories, err := app.Faves.List(ctx)
			if err != nil {
				return err
			}
			printStoryList(cmd, stories, "")
			return nil
		}),
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
