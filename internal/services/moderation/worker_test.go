package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/models"
	"github.com/kejahunt/keja-api/internal/services/ai"
)

type fakeScanStore struct {
	pending    []PendingImage
	pendingErr error
	verdicts   map[uuid.UUID]models.AIScan
}

func (s *fakeScanStore) PendingImages(ctx context.Context, limit int) ([]PendingImage, error) {
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeScanStore) RecordVerdict(ctx context.Context, imageID uuid.UUID, scan models.AIScan) error {
	if s.verdicts == nil {
		s.verdicts = map[uuid.UUID]models.AIScan{}
	}
	s.verdicts[imageID] = scan
	return nil
}

type fakeScanner struct {
	results map[string]*ai.ScanResult
	errs    map[string]error
	calls   int
}

func (s *fakeScanner) ScanListingImage(ctx context.Context, imageURL string) (*ai.ScanResult, error) {
	s.calls++
	if err := s.errs[imageURL]; err != nil {
		return nil, err
	}
	return s.results[imageURL], nil
}

func testWorkerConfig() *config.Config {
	return &config.Config{
		ModerationConfig: config.ModerationConfig{
			Interval:  time.Minute,
			BatchSize: 10,
		},
	}
}

func TestSweep_RecordsVerdicts(t *testing.T) {
	clearID, flaggedID := uuid.New(), uuid.New()
	store := &fakeScanStore{pending: []PendingImage{
		{ID: clearID, URL: "https://cdn.test/a.jpg"},
		{ID: flaggedID, URL: "https://cdn.test/b.jpg"},
	}}
	scanner := &fakeScanner{results: map[string]*ai.ScanResult{
		"https://cdn.test/a.jpg": {Flagged: false},
		"https://cdn.test/b.jpg": {Flagged: true, Reason: "stock photo watermark"},
	}}

	NewWorker(testWorkerConfig(), scanner, store).sweep(context.Background())

	require.Len(t, store.verdicts, 2)
	assert.Equal(t, models.ScanClear, store.verdicts[clearID].Status)
	assert.Equal(t, models.ScanFlagged, store.verdicts[flaggedID].Status)
	assert.Equal(t, "stock photo watermark", store.verdicts[flaggedID].Reason)
	assert.False(t, store.verdicts[clearID].ScannedAt.IsZero())
}

func TestSweep_NilVerdictLeavesRowPending(t *testing.T) {
	store := &fakeScanStore{pending: []PendingImage{
		{ID: uuid.New(), URL: "https://cdn.test/a.jpg"},
	}}
	scanner := &fakeScanner{} // returns (nil, nil) for every URL

	NewWorker(testWorkerConfig(), scanner, store).sweep(context.Background())

	assert.Equal(t, 1, scanner.calls)
	assert.Empty(t, store.verdicts)
}

func TestSweep_ScanErrorSkipsRowAndContinues(t *testing.T) {
	okID := uuid.New()
	store := &fakeScanStore{pending: []PendingImage{
		{ID: uuid.New(), URL: "https://cdn.test/bad.jpg"},
		{ID: okID, URL: "https://cdn.test/ok.jpg"},
	}}
	scanner := &fakeScanner{
		errs:    map[string]error{"https://cdn.test/bad.jpg": errors.New("service unavailable")},
		results: map[string]*ai.ScanResult{"https://cdn.test/ok.jpg": {Flagged: false}},
	}

	NewWorker(testWorkerConfig(), scanner, store).sweep(context.Background())

	require.Len(t, store.verdicts, 1)
	assert.Equal(t, models.ScanClear, store.verdicts[okID].Status)
}

func TestSweep_QueryErrorScansNothing(t *testing.T) {
	store := &fakeScanStore{pendingErr: errors.New("connection refused")}
	scanner := &fakeScanner{}

	NewWorker(testWorkerConfig(), scanner, store).sweep(context.Background())

	assert.Zero(t, scanner.calls)
}

func TestSweep_HonorsBatchSize(t *testing.T) {
	var pending []PendingImage
	results := map[string]*ai.ScanResult{}
	for i := 0; i < 5; i++ {
		url := "https://cdn.test/" + uuid.NewString() + ".jpg"
		pending = append(pending, PendingImage{ID: uuid.New(), URL: url})
		results[url] = &ai.ScanResult{}
	}

	cfg := testWorkerConfig()
	cfg.ModerationConfig.BatchSize = 2
	store := &fakeScanStore{pending: pending}
	scanner := &fakeScanner{results: results}

	NewWorker(cfg, scanner, store).sweep(context.Background())

	assert.Equal(t, 2, scanner.calls)
}
