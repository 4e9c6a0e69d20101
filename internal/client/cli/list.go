package cli

import (
	"context"
	"fmt"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var (
		page, size   int
		withLocation bool
		sortKey      string
		search       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories (local fallback when offline)",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			params := api.ListParams{Page: page, Size: size}

			var list *models.StoryList
			if withLocation {
				list = app.Stories.GetStoriesWithLocation(ctx, params)
			} else {
				list = app.Stories.GetAllStories(ctx, params)
			}

			stories := list.Stories
			if search != "" {
				stories = models.Search(stories, search)
			}
			stories = models.Sort(stories, sortKey)

			printStoryList(cmd, stories, list.Message)
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().BoolVar(&withLocation, "location", false, "only stories with coordinates")
	cmd.Flags().StringVar(&sortKey, "sort", models.SortNewest, "sort order (newest|oldest|name)")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or description")
	return cmd
}

func newDetailCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <story-id>",
		Short: "Show one story (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			story, err := app.Stories.GetStoryDetail(ctx, args[0])
			if err != nil {
				return err
			}
			printStory(cmd, story)
			return nil
		}),
	}
}

func newFeaturedCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Show the featured stories",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			list, err := app.Stories.GetFeaturedStories(ctx, limit)
			if err != nil {
				return err
			}
			printStoryList(cmd, list.Stories, list.Message)
			return nil
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of stories (default 6)")
	return cmd
}

func printStoryList(cmd *cobra.Command, stories []models.Story, message string) {
	out := cmd.OutOrStdout()
	if message != "" {
		fmt.Fprintf(out, "! %s\n", message)
	}
	if len(stories) == 0 {
		fmt.Fprintln(out, "No stories.")
		return
	}
	for _, s := range stories {
		marker := " "
		if s.HasLocation {
			marker = "@"
		}
		fmt.Fprintf(out, "%s %-12s %-20s %s  %s\n", marker, s.ID, s.Name, s.FormattedDate, s.ShortDescription)
	}
}

func printStory(cmd *cobra.Command, s *models.Story) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\nby %s on %s\n\n%s\n", s.ID, s.Name, s.FormattedDate, s.Description)
	if s.HasLocation {
		fmt.Fprintf(out, "\nlocation: %v, %v\n", *s.Lat, *s.Lon)
	}
	fmt.Fprintf(out, "photo: %s\n", s.PhotoURL)
}
