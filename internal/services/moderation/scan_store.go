package moderation

import (
	"context"

	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
)

// PGScanStore claims pending rows from the property_images table.
type PGScanStore struct{}

// NewPGScanStore returns the pgx-backed scan store.
func NewPGScanStore() *PGScanStore {
	return &PGScanStore{}
}

func (s *PGScanStore) PendingImages(ctx context.Context, limit int) ([]PendingImage, error) {
	dbCtx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(dbCtx, `
		SELECT id, url FROM property_images
		WHERE ai_scan->>'status' = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, models.ScanPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingImage
	for rows.Next() {
		var img PendingImage
		if err := rows.Scan(&img.ID, &img.URL); err != nil {
			return nil, err
		}
		pending = append(pending, img)
	}
	return pending, rows.Err()
}

func (s *PGScanStore) RecordVerdict(ctx context.Context, imageID uuid.UUID, scan models.AIScan) error {
	dbCtx, cancel := db.GetContext()
	defer cancel()

	_, err := db.Pool.Exec(dbCtx, "UPDATE property_images SET ai_scan = $1 WHERE id = $2", scan, imageID)
	return err
}
