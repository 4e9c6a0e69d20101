// Package stories persists the write-through cache of remote stories.
package stories

import (
	"context"
	"fmt"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, s *models.Story) error {
	query := `INSERT INTO stories (id, name, description, photo_url, created_at, lat, lon, has_location)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				photo_url = excluded.photo_url,
				created_at = excluded.created_at,
				lat = excluded.lat,
				lon = excluded.lon,
				has_location = excluded.has_location
	`
	hasLocation := s.Lat != nil && s.Lon != nil
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PhotoURL, s.CreatedAt, s.Lat, s.Lon, hasLocation)
	if err != nil {
		return fmt.Errorf("failed to upsert story: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Story, error) {
	query := `SELECT id, name, description, photo_url, created_at, lat, lon FROM stories`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select stories: %w", err)
	}
	defer rows.Close()

	var result []models.Story
	for rows.Next() {
		var item models.Story
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.PhotoURL,
			&item.CreatedAt, &item.Lat, &item.Lon); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories`)
	if err != nil {
		return fmt.Errorf("failed to clear stories: %w", err)
	}
	return nil
}
