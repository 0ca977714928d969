package images

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kejahunt/keja-api/internal/models"
	"github.com/kejahunt/keja-api/internal/storage"
)

type uploadCall struct {
	path string
	opts storage.UploadOptions
}

type fakeStore struct {
	uploads      []uploadCall
	removed      []string
	rejectUpsert bool // fail every attempt that does not allow overwrite
}

func (s *fakeStore) Upload(ctx context.Context, path string, r io.Reader, opts storage.UploadOptions) error {
	s.uploads = append(s.uploads, uploadCall{path: path, opts: opts})
	if s.rejectUpsert && !opts.Overwrite {
		return errors.New("object already exists")
	}
	return nil
}

func (s *fakeStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (s *fakeStore) Remove(ctx context.Context, paths []string) error {
	s.removed = append(s.removed, paths...)
	return nil
}

type fakeMeta struct {
	rows      []models.ImageRow
	urls      map[string]string
	insertErr error
	deleted   []string
}

func (m *fakeMeta) InsertImage(ctx context.Context, row models.ImageRow) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *fakeMeta) ImageURL(ctx context.Context, id string) (string, bool, error) {
	url, ok := m.urls[id]
	return url, ok, nil
}

func (m *fakeMeta) DeleteImage(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.urls, id)
	return nil
}

func testIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Email: "agent@keja.test"}
}

func imageFile(name string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        1024,
		Reader:      strings.NewReader("not a real jpeg"),
	}
}

func TestIngestBatch_PartialSuccess(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{}
	ing := NewIngestor(store, meta)

	files := []UploadFile{
		imageFile("a.jpg"),
		{Name: "b.pdf", ContentType: "application/pdf", Size: 1024, Reader: strings.NewReader("%PDF")},
		imageFile("c.png"),
	}

	result, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), files)
	require.NoError(t, err)

	assert.Len(t, result.URLs, 2)
	assert.Len(t, meta.rows, 2)
	require.Len(t, result.Outcomes, 3)

	assert.Equal(t, OutcomeUploaded, result.Outcomes[0].Kind)
	assert.Equal(t, OutcomeSkipped, result.Outcomes[1].Kind)
	assert.Equal(t, OutcomeUploaded, result.Outcomes[2].Kind)

	// Success order follows input order.
	assert.Equal(t, result.Outcomes[0].URL, result.URLs[0])
	assert.Equal(t, result.Outcomes[2].URL, result.URLs[1])
}

func TestIngestBatch_EmptyInput(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{}
	ing := NewIngestor(store, meta)

	result, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), nil)
	require.NoError(t, err)

	assert.Empty(t, result.URLs)
	assert.Empty(t, store.uploads)
	assert.Empty(t, meta.rows)
}

func TestIngestBatch_SizeBoundary(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{}
	ing := NewIngestor(store, meta)

	files := []UploadFile{
		{Name: "at-limit.jpg", ContentType: "image/jpeg", Size: MaxFileSize, Reader: strings.NewReader("x")},
		{Name: "over-limit.jpg", ContentType: "image/jpeg", Size: MaxFileSize + 1, Reader: strings.NewReader("x")},
	}

	result, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), files)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, OutcomeUploaded, result.Outcomes[0].Kind)
	assert.Equal(t, OutcomeSkipped, result.Outcomes[1].Kind)
	assert.Len(t, result.URLs, 1)
}

func TestIngestBatch_AuthGate(t *testing.T) {
	store := &fakeStore{}
	ing := NewIngestor(store, &fakeMeta{})

	_, err := ing.IngestBatch(context.Background(), nil, uuid.New(), []UploadFile{imageFile("a.jpg")})

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Empty(t, store.uploads)
}

func TestIngestBatch_AuthGateRequiresEmail(t *testing.T) {
	store := &fakeStore{}
	ing := NewIngestor(store, &fakeMeta{})

	ident := &models.Identity{ID: uuid.New()}
	_, err := ing.IngestBatch(context.Background(), ident, uuid.New(), []UploadFile{imageFile("a.jpg")})

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Empty(t, store.uploads)
}

func TestIngestBatch_RetriesOnceWithOverwrite(t *testing.T) {
	store := &fakeStore{rejectUpsert: true}
	meta := &fakeMeta{}
	ing := NewIngestor(store, meta)

	result, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), []UploadFile{imageFile("a.jpg")})
	require.NoError(t, err)

	require.Len(t, store.uploads, 2)
	assert.False(t, store.uploads[0].opts.Overwrite)
	assert.True(t, store.uploads[1].opts.Overwrite)
	assert.Equal(t, store.uploads[0].path, store.uploads[1].path)

	assert.Len(t, result.URLs, 1)
	assert.Len(t, meta.rows, 1)
}

func TestIngestBatch_MetadataFailureKeepsURL(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{insertErr: errors.New("connection refused")}
	ing := NewIngestor(store, meta)

	result, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), []UploadFile{imageFile("a.jpg")})
	require.NoError(t, err)

	require.Len(t, result.URLs, 1)
	assert.Equal(t, OutcomeUploaded, result.Outcomes[0].Kind)
	assert.Equal(t, "metadata insert failed", result.Outcomes[0].Reason)
	assert.Empty(t, meta.rows)
}

func TestIngestBatch_PathGroupsByListing(t *testing.T) {
	store := &fakeStore{}
	ing := NewIngestor(store, &fakeMeta{})

	listingID := uuid.New()
	_, err := ing.IngestBatch(context.Background(), testIdentity(), listingID, []UploadFile{imageFile("a.jpg")})
	require.NoError(t, err)

	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasPrefix(store.uploads[0].path, "listing-images/"+listingID.String()+"/"))
	assert.True(t, strings.HasSuffix(store.uploads[0].path, ".jpg"))
}

func TestIngestBatch_ExtensionDefaultsToJpg(t *testing.T) {
	store := &fakeStore{}
	ing := NewIngestor(store, &fakeMeta{})

	_, err := ing.IngestBatch(context.Background(), testIdentity(), uuid.New(), []UploadFile{imageFile("camera-roll")})
	require.NoError(t, err)

	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasSuffix(store.uploads[0].path, ".jpg"))
}

func TestIngestBatchNoMetadata(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{}
	ing := NewIngestor(store, meta)

	result := ing.IngestBatchNoMetadata(context.Background(), uuid.New(), []UploadFile{imageFile("a.jpg")})

	assert.Len(t, result.URLs, 1)
	assert.Empty(t, meta.rows)

	require.Len(t, store.uploads, 1)
	assert.Equal(t, "image/jpeg", store.uploads[0].opts.ContentType)
	assert.Equal(t, "max-age=3600", store.uploads[0].opts.CacheControl)
	assert.False(t, store.uploads[0].opts.Overwrite)
}

func TestIngestBatchNoMetadata_NoRetry(t *testing.T) {
	store := &fakeStore{rejectUpsert: true}
	ing := NewIngestor(store, &fakeMeta{})

	result := ing.IngestBatchNoMetadata(context.Background(), uuid.New(), []UploadFile{imageFile("a.jpg")})

	assert.Len(t, store.uploads, 1)
	assert.Empty(t, result.URLs)
	assert.Equal(t, OutcomeFailed, result.Outcomes[0].Kind)
}

func TestDeleteBatch_Idempotent(t *testing.T) {
	store := &fakeStore{}
	meta := &fakeMeta{urls: map[string]string{}}
	ing := NewIngestor(store, meta)

	deleted, err := ing.DeleteBatch(context.Background(), testIdentity(), []string{"already-gone-id"})
	require.NoError(t, err)

	assert.Equal(t, []string{"already-gone-id"}, deleted)
	assert.Empty(t, store.removed)
	assert.Empty(t, meta.deleted)
}

func TestDeleteBatch_RemovesObjectAndRow(t *testing.T) {
	store := &fakeStore{}
	imageID := uuid.New().String()
	meta := &fakeMeta{urls: map[string]string{
		imageID: "https://cdn.test/listing-images/abc/photo.jpg",
	}}
	ing := NewIngestor(store, meta)

	deleted, err := ing.DeleteBatch(context.Background(), testIdentity(), []string{imageID})
	require.NoError(t, err)

	assert.Equal(t, []string{imageID}, deleted)
	assert.Equal(t, []string{"listing-images/abc/photo.jpg"}, store.removed)
	assert.Equal(t, []string{imageID}, meta.deleted)
}

func TestDeleteBatch_UnparseableURLStillDeletesRow(t *testing.T) {
	store := &fakeStore{}
	imageID := uuid.New().String()
	meta := &fakeMeta{urls: map[string]string{
		imageID: "https://cdn.test/somewhere-else/photo.jpg",
	}}
	ing := NewIngestor(store, meta)

	deleted, err := ing.DeleteBatch(context.Background(), testIdentity(), []string{imageID})
	require.NoError(t, err)

	assert.Equal(t, []string{imageID}, deleted)
	assert.Empty(t, store.removed)
	assert.Equal(t, []string{imageID}, meta.deleted)
}

func TestDeleteBatch_AuthGate(t *testing.T) {
	store := &fakeStore{}
	ing := NewIngestor(store, &fakeMeta{})

	_, err := ing.DeleteBatch(context.Background(), nil, []string{"any"})
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = ing.DeleteBatch(context.Background(), &models.Identity{ID: uuid.New()}, []string{"any"})
	assert.ErrorIs(t, err, ErrAuthRequired)

	assert.Empty(t, store.removed)
}
