package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/kejahunt/keja-api/internal/config"
)

// CloudinaryStore serves the ObjectStore contract from a Cloudinary cloud.
type CloudinaryStore struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryStore builds a store from config credentials.
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, cloudName: cfg.CloudName}, nil
}

// Upload writes the object under the given path. Cloudinary public IDs
// exclude the file extension; the delivery URL carries it instead, so the
// stored ID is the path minus its extension. ContentType and CacheControl
// are ignored here: Cloudinary derives both from the payload and its own
// delivery settings.
func (s *CloudinaryStore) Upload(ctx context.Context, objectPath string, r io.Reader, opts UploadOptions) error {
	params := uploader.UploadParams{
		PublicID:  publicID(objectPath),
		Overwrite: api.Bool(opts.Overwrite),
	}

	res, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	if res != nil && res.Error.Message != "" {
		return fmt.Errorf("uploading %s: %s", objectPath, res.Error.Message)
	}
	return nil
}

// PublicURL returns the deterministic delivery URL for a stored path.
func (s *CloudinaryStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", s.cloudName, objectPath)
}

// Remove destroys the objects at the given paths. Failures are joined so
// the caller sees every path that could not be removed.
func (s *CloudinaryStore) Remove(ctx context.Context, paths []string) error {
	var failed []string
	for _, p := range paths {
		res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:   publicID(p),
			Invalidate: api.Bool(true),
		})
		if err != nil || (res != nil && res.Error.Message != "") {
			failed = append(failed, p)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("removing objects: %s", strings.Join(failed, ", "))
	}
	return nil
}

func publicID(objectPath string) string {
	return strings.TrimSuffix(objectPath, path.Ext(objectPath))
}
