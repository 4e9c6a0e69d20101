package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/spf13/cobra"
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	var (
		description string
		photoPath   string
		lat, lon    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a story, or queue it when offline",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			photo, err := loadPhoto(photoPath)
			if err != nil {
				return err
			}

			res, err := app.Stories.AddStory(ctx, models.StoryDraft{
				Description: description,
				Photo:       photo,
				Lat:         lat,
				Lon:         lon,
			})
			if err != nil {
				return err
			}

			if res.Queued {
				fmt.Fprintf(cmd.OutOrStdout(), "Offline: story queued for sync (%s)\n", res.PendingID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Story published.")
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "story text (min 10 characters)")
	cmd.Flags().StringVarP(&photoPath, "photo", "p", "", "path to the photo file")
	cmd.Flags().StringVar(&lat, "lat", "", "latitude")
	cmd.Flags().StringVar(&lon, "lon", "", "longitude")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

// loadPhoto reads the photo and determines its MIME type, preferring the
// file extension and sniffing the content when the extension says nothing.
func loadPhoto(path string) (*models.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return &models.Photo{
		Name: filepath.Base(path),
		MIME: mimeType,
		Data: data,
	}, nil
}
