package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// BucketListingImages is the storage prefix all listing images live under.
const BucketListingImages = "listing-images"

// UploadOptions tune a single object write. Adapters apply what their
// backend supports and ignore the rest.
type UploadOptions struct {
	Overwrite    bool
	ContentType  string
	CacheControl string
}

// ObjectStore is the object-storage contract the image pipeline depends on.
// PublicURL is deterministic given the path and performs no network call.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, opts UploadOptions) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
}

// ObjectPath composes the storage path for one listing image. Grouping by
// listing ID keeps a listing's images under one prefix for bulk deletion.
func ObjectPath(listingID, name string) string {
	return BucketListingImages + "/" + listingID + "/" + name
}

// PathFromPublicURL recovers the storage path from a stored public URL by
// locating the bucket segment. Returns an error when the URL does not
// contain the bucket or nothing follows it.
func PathFromPublicURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing public URL: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == BucketListingImages && i < len(segments)-1 {
			return strings.Join(segments[i:], "/"), nil
		}
	}
	return "", fmt.Errorf("no %q segment in %q", BucketListingImages, rawURL)
}
