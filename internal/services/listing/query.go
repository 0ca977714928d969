package listing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmcloughlin/geohash"

	"github.com/kejahunt/keja-api/internal/models"
)

// geohashPrecision of 7 characters is roughly a 150m cell, enough for
// neighborhood-level proximity filtering.
const geohashPrecision = 7

// buildUpdate renders a wire-format patch into a SET clause with positional
// parameters. Keys are sorted so the statement is deterministic. updated_at
// always moves; status only moves when the patch names it explicitly.
func buildUpdate(patch map[string]any) (string, []any) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		parts = append(parts, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, patch[k])
	}
	parts = append(parts, "updated_at = NOW()")

	return strings.Join(parts, ", "), args
}

// locationGeohash encodes the listing's coordinates for prefix-based
// proximity search. Listings without coordinates get no geohash.
func locationGeohash(loc models.Location) string {
	if loc.Latitude == nil || loc.Longitude == nil {
		return ""
	}
	return geohash.EncodeWithPrecision(*loc.Latitude, *loc.Longitude, geohashPrecision)
}

// searchFilters are the supported listing search parameters.
type searchFilters struct {
	County   string
	MinPrice float64
	MaxPrice float64
	Bedrooms int
	Status   string
	Featured bool
	Near     string
}

// buildSearchWhere renders filters into a WHERE clause and its arguments.
func buildSearchWhere(f searchFilters) (string, []any) {
	clauses := []string{"l.status = $1"}
	args := []any{f.Status}

	next := func() int { return len(args) + 1 }

	if f.County != "" {
		clauses = append(clauses, fmt.Sprintf("l.location->>'county' ILIKE $%d", next()))
		args = append(args, f.County)
	}
	if f.MinPrice > 0 {
		clauses = append(clauses, fmt.Sprintf("l.price >= $%d", next()))
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		clauses = append(clauses, fmt.Sprintf("l.price <= $%d", next()))
		args = append(args, f.MaxPrice)
	}
	if f.Bedrooms > 0 {
		clauses = append(clauses, fmt.Sprintf("l.bedrooms >= $%d", next()))
		args = append(args, f.Bedrooms)
	}
	if f.Featured {
		clauses = append(clauses, "l.is_featured = true")
	}
	if f.Near != "" {
		clauses = append(clauses, fmt.Sprintf("l.geohash LIKE $%d", next()))
		args = append(args, f.Near+"%")
	}

	return strings.Join(clauses, " AND "), args
}
