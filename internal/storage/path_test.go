package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	got := ObjectPath("listing-1", "abc.jpg")
	assert.Equal(t, "listing-images/listing-1/abc.jpg", got)
}

func TestPathFromPublicURL(t *testing.T) {
	p, err := PathFromPublicURL("https://res.cloudinary.com/demo/image/upload/listing-images/l1/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "listing-images/l1/abc.jpg", p)
}

func TestPathFromPublicURL_NoBucketSegment(t *testing.T) {
	_, err := PathFromPublicURL("https://res.cloudinary.com/demo/image/upload/other/abc.jpg")
	assert.Error(t, err)
}

func TestPathFromPublicURL_NothingAfterBucket(t *testing.T) {
	_, err := PathFromPublicURL("https://res.cloudinary.com/demo/image/upload/listing-images")
	assert.Error(t, err)
}
