// Package pending persists the offline write queue.
package pending

import (
	"context"
	"fmt"
	"time"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, p *models.PendingStory) error {
	query := `INSERT INTO pending_stories (id, description, photo_name, photo_mime, photo, lat, lon, queued_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET description = excluded.description,
				photo_name = excluded.photo_name,
				photo_mime = excluded.photo_mime,
				photo = excluded.photo,
				lat = excluded.lat,
				lon = excluded.lon,
				queued_at = excluded.queued_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Description, p.PhotoName, p.PhotoMIME, p.PhotoData, p.Lat, p.Lon,
		p.QueuedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to enqueue pending story: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.PendingStory, error) {
	query := `SELECT id, description, photo_name, photo_mime, photo, lat, lon, queued_at
			FROM pending_stories ORDER BY queued_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending stories: %w", err)
	}
	defer rows.Close()

	var result []models.PendingStory
	for rows.Next() {
		var item models.PendingStory
		var queuedAt string
		if err := rows.Scan(&item.ID, &item.Description, &item.PhotoName, &item.PhotoMIME,
			&item.PhotoData, &item.Lat, &item.Lon, &queuedAt); err != nil {
			return nil, err
		}
		item.QueuedAt, _ = time.Parse(time.RFC3339Nano, queuedAt)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending story: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_stories`)
	if err != nil {
		return fmt.Errorf("failed to clear pending stories: %w", err)
	}
	return nil
}
