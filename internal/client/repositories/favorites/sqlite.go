// Package favorites persists the user's favorited stories.
package favorites

import (
	"context"
	"fmt"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, s *models.Story) error {
	query := `INSERT INTO favorites (id, name, description, photo_url, created_at, lat, lon, has_location)
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
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, photo_url, created_at, lat, lon FROM favorites`)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
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
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites`)
	if err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Has(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM favorites WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}
