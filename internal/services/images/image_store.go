package images

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
)

// PGImageStore persists image metadata in the property_images table.
type PGImageStore struct{}

// NewPGImageStore returns the pgx-backed metadata store.
func NewPGImageStore() *PGImageStore {
	return &PGImageStore{}
}

func (s *PGImageStore) InsertImage(ctx context.Context, row models.ImageRow) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO property_images (id, listing_id, url, alt_text, ai_scan, phash, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, row.ID, row.ListingID, row.URL, row.AltText, row.AIScan, row.PHash, row.Position, row.CreatedAt)
	return err
}

func (s *PGImageStore) ImageURL(ctx context.Context, id string) (string, bool, error) {
	var url string
	err := db.Pool.QueryRow(ctx, "SELECT url FROM property_images WHERE id = $1", id).Scan(&url)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (s *PGImageStore) DeleteImage(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, "DELETE FROM property_images WHERE id = $1", id)
	return err
}
