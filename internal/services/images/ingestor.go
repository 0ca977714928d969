package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/models"
	"github.com/kejahunt/keja-api/internal/storage"
)

// MaxFileSize is the per-file upload ceiling. Files of exactly this size
// are accepted; one byte more is rejected.
const MaxFileSize = 10 << 20

// ErrAuthRequired is returned when a batch operation that needs an
// authenticated caller is invoked without one. It is the only batch-level
// failure; everything per-file is reported through outcomes instead.
var ErrAuthRequired = errors.New("authentication required")

// UploadFile is one candidate file for ingestion. Size and ContentType are
// the caller-declared values from the multipart header.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// OutcomeKind classifies what happened to one file in a batch.
type OutcomeKind string

const (
	OutcomeUploaded OutcomeKind = "uploaded"
	OutcomeSkipped  OutcomeKind = "skipped"
	OutcomeFailed   OutcomeKind = "failed"
)

// FileOutcome is the per-file result of a batch operation. Skipped files
// carry the validation reason, failed files the terminal error, uploaded
// files their public URL.
type FileOutcome struct {
	FileName string      `json:"file_name"`
	Kind     OutcomeKind `json:"kind"`
	URL      string      `json:"url,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// BatchResult aggregates a batch: URLs holds the successes in input order,
// Outcomes one entry per input file.
type BatchResult struct {
	URLs     []string      `json:"urls"`
	Outcomes []FileOutcome `json:"outcomes"`
}

// MetaStore is the relational side of the image pipeline.
type MetaStore interface {
	InsertImage(ctx context.Context, row models.ImageRow) error
	ImageURL(ctx context.Context, id string) (string, bool, error)
	DeleteImage(ctx context.Context, id string) error
}

// Ingestor uploads listing image batches and keeps their metadata rows in
// step. Partial failure is the normal case: one bad file never aborts the
// rest of the batch.
type Ingestor struct {
	store storage.ObjectStore
	meta  MetaStore
}

// NewIngestor creates an ingestor over the given object and metadata stores.
func NewIngestor(store storage.ObjectStore, meta MetaStore) *Ingestor {
	return &Ingestor{store: store, meta: meta}
}

// IngestBatch validates, uploads and records each file independently and
// returns the public URLs of the files that made it all the way through,
// in input order. A metadata-insert failure after a successful upload keeps
// the URL in the result; the stored object is authoritative. The identity
// precondition is the only all-or-nothing gate.
func (ing *Ingestor) IngestBatch(ctx context.Context, ident *models.Identity, listingID uuid.UUID, files []UploadFile) (BatchResult, error) {
	if ident == nil || ident.Email == "" {
		return BatchResult{}, ErrAuthRequired
	}

	result := BatchResult{URLs: []string{}, Outcomes: make([]FileOutcome, 0, len(files))}

	for _, f := range files {
		outcome := ing.ingestOne(ctx, listingID, f)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Kind == OutcomeUploaded {
			result.URLs = append(result.URLs, outcome.URL)
		}
	}

	return result, nil
}

func (ing *Ingestor) ingestOne(ctx context.Context, listingID uuid.UUID, f UploadFile) FileOutcome {
	if reason := validate(f); reason != "" {
		slog.Warn("skipping file", "file", f.Name, "reason", reason)
		return FileOutcome{FileName: f.Name, Kind: OutcomeSkipped, Reason: reason}
	}

	data, err := io.ReadAll(f.Reader)
	if err != nil {
		slog.Error("reading file", "file", f.Name, "error", err)
		return FileOutcome{FileName: f.Name, Kind: OutcomeFailed, Reason: "read: " + err.Error()}
	}

	path := storage.ObjectPath(listingID.String(), generateName(f.Name))

	err = ing.store.Upload(ctx, path, bytes.NewReader(data), storage.UploadOptions{})
	if err != nil {
		// A prior partial run may have left an orphaned object at this
		// path. Retry exactly once with overwrite allowed.
		slog.Warn("upload failed, retrying with overwrite", "path", path, "error", err)
		err = ing.store.Upload(ctx, path, bytes.NewReader(data), storage.UploadOptions{Overwrite: true})
	}
	if err != nil {
		slog.Error("upload failed after retry", "path", path, "error", err)
		return FileOutcome{FileName: f.Name, Kind: OutcomeFailed, Reason: "upload: " + err.Error()}
	}

	url := ing.store.PublicURL(path)

	row := models.ImageRow{
		ID:        uuid.New(),
		ListingID: listingID,
		URL:       url,
		AIScan:    models.AIScan{Status: models.ScanPending, ScannedAt: time.Now().UTC()},
		PHash:     perceptualHash(data),
		CreatedAt: time.Now().UTC(),
	}

	if err := ing.meta.InsertImage(ctx, row); err != nil {
		// The object is uploaded and reachable; the URL stays in the
		// batch. The reason marks the row for later reconciliation.
		slog.Error("recording image metadata", "url", url, "error", err)
		return FileOutcome{FileName: f.Name, Kind: OutcomeUploaded, URL: url, Reason: "metadata insert failed"}
	}

	return FileOutcome{FileName: f.Name, Kind: OutcomeUploaded, URL: url}
}

// IngestBatchNoMetadata uploads with explicit content-type and a short
// client cache, skips metadata entirely and needs no authenticated caller.
// It does not retry: staged uploads go to fresh paths, so a collision means
// something is wrong rather than leftover state.
func (ing *Ingestor) IngestBatchNoMetadata(ctx context.Context, listingID uuid.UUID, files []UploadFile) BatchResult {
	result := BatchResult{URLs: []string{}, Outcomes: make([]FileOutcome, 0, len(files))}

	for _, f := range files {
		if reason := validate(f); reason != "" {
			slog.Warn("skipping file", "file", f.Name, "reason", reason)
			result.Outcomes = append(result.Outcomes, FileOutcome{FileName: f.Name, Kind: OutcomeSkipped, Reason: reason})
			continue
		}

		path := storage.ObjectPath(listingID.String(), generateName(f.Name))

		err := ing.store.Upload(ctx, path, f.Reader, storage.UploadOptions{
			ContentType:  f.ContentType,
			CacheControl: "max-age=3600",
		})
		if err != nil {
			slog.Error("staged upload failed", "path", path, "error", err)
			result.Outcomes = append(result.Outcomes, FileOutcome{FileName: f.Name, Kind: OutcomeFailed, Reason: "upload: " + err.Error()})
			continue
		}

		url := ing.store.PublicURL(path)
		result.Outcomes = append(result.Outcomes, FileOutcome{FileName: f.Name, Kind: OutcomeUploaded, URL: url})
		result.URLs = append(result.URLs, url)
	}

	return result
}

// DeleteBatch removes image rows and their stored objects. An identifier
// whose row is already gone counts as deleted, so repeated delete requests
// are safe. A storage-side failure never blocks the metadata delete.
func (ing *Ingestor) DeleteBatch(ctx context.Context, ident *models.Identity, imageIDs []string) ([]string, error) {
	if ident == nil || ident.Email == "" {
		return nil, ErrAuthRequired
	}

	deleted := []string{}

	for _, id := range imageIDs {
		url, found, err := ing.meta.ImageURL(ctx, id)
		if err != nil {
			slog.Error("looking up image", "image_id", id, "error", err)
			continue
		}
		if !found {
			deleted = append(deleted, id)
			continue
		}

		if path, err := storage.PathFromPublicURL(url); err != nil {
			slog.Warn("cannot derive storage path", "image_id", id, "url", url, "error", err)
		} else if err := ing.store.Remove(ctx, []string{path}); err != nil {
			slog.Error("removing stored object", "path", path, "error", err)
		}

		if err := ing.meta.DeleteImage(ctx, id); err != nil {
			slog.Error("deleting image row", "image_id", id, "error", err)
			continue
		}
		deleted = append(deleted, id)
	}

	return deleted, nil
}

// validate returns a skip reason, or "" when the file may be uploaded.
func validate(f UploadFile) string {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return "not an image: " + f.ContentType
	}
	if f.Size > MaxFileSize {
		return "exceeds 10 MiB limit"
	}
	return ""
}

// generateName produces a globally unique filename keeping the original
// extension, defaulting to jpg.
func generateName(original string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(original)), ".")
	if ext == "" {
		ext = "jpg"
	}
	return uuid.New().String() + "." + ext
}

// perceptualHash fingerprints the image for near-duplicate detection.
// Undecodable payloads just get no fingerprint.
func perceptualHash(data []byte) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return ""
	}
	return hash.ToString()
}
