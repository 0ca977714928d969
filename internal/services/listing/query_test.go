package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kejahunt/keja-api/internal/models"
)

func TestBuildUpdate_DeterministicOrder(t *testing.T) {
	set, args := buildUpdate(map[string]any{
		"title":       "x",
		"area_sq_ft":  120.0,
		"is_featured": true,
	})

	assert.Equal(t, "area_sq_ft = $1, is_featured = $2, title = $3, updated_at = NOW()", set)
	assert.Equal(t, []any{120.0, true, "x"}, args)
}

func TestLocationGeohash(t *testing.T) {
	lat, lng := -1.2921, 36.8219
	gh := locationGeohash(models.Location{Latitude: &lat, Longitude: &lng})
	assert.Len(t, gh, geohashPrecision)

	assert.Empty(t, locationGeohash(models.Location{}), "no coordinates, no geohash")
}

func TestBuildSearchWhere(t *testing.T) {
	where, args := buildSearchWhere(searchFilters{
		Status:   models.StatusAvailable,
		County:   "Nairobi",
		MaxPrice: 50000,
		Near:     "kzf0t",
	})

	assert.Equal(t, "l.status = $1 AND l.location->>'county' ILIKE $2 AND l.price <= $3 AND l.geohash LIKE $4", where)
	assert.Equal(t, []any{models.StatusAvailable, "Nairobi", 50000.0, "kzf0t%"}, args)
}
