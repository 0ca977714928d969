package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/models"
	"github.com/kejahunt/keja-api/internal/services/ai"
)

// PendingImage is one property_images row awaiting a moderation verdict.
type PendingImage struct {
	ID  uuid.UUID
	URL string
}

// ScanStore claims pending image rows and records verdicts.
type ScanStore interface {
	PendingImages(ctx context.Context, limit int) ([]PendingImage, error)
	RecordVerdict(ctx context.Context, imageID uuid.UUID, scan models.AIScan) error
}

// Scanner produces a moderation verdict for one image URL.
type Scanner interface {
	ScanListingImage(ctx context.Context, imageURL string) (*ai.ScanResult, error)
}

// Worker sweeps pending image moderation rows and records the verdicts.
// Rows the content service cannot assess stay pending and get picked up on
// a later sweep; the sweep also surfaces orphaned rows from interrupted
// ingest batches.
type Worker struct {
	cfg     *config.Config
	scanner Scanner
	store   ScanStore
}

// NewWorker creates a moderation worker.
func NewWorker(cfg *config.Config, scanner Scanner, store ScanStore) *Worker {
	return &Worker{cfg: cfg, scanner: scanner, store: store}
}

// Run sweeps on the configured interval until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ModerationConfig.Interval)
	defer ticker.Stop()

	slog.Info("moderation worker started", "interval", w.cfg.ModerationConfig.Interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("moderation worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	pending, err := w.store.PendingImages(ctx, w.cfg.ModerationConfig.BatchSize)
	if err != nil {
		slog.Error("querying pending images", "error", err)
		return
	}

	for _, img := range pending {
		result, err := w.scanner.ScanListingImage(ctx, img.URL)
		if err != nil {
			slog.Error("scanning image", "image_id", img.ID, "error", err)
			continue
		}
		if result == nil {
			// Unusable verdict; leave the row pending for the next sweep.
			continue
		}

		scan := models.AIScan{Status: models.ScanClear, ScannedAt: time.Now().UTC()}
		if result.Flagged {
			scan.Status = models.ScanFlagged
			scan.Reason = result.Reason
		}

		if err := w.store.RecordVerdict(ctx, img.ID, scan); err != nil {
			slog.Error("recording scan verdict", "image_id", img.ID, "error", err)
			continue
		}

		if scan.Status == models.ScanFlagged {
			slog.Warn("image flagged", "image_id", img.ID, "reason", scan.Reason)
		}
	}
}
