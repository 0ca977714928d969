package listing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kejahunt/keja-api/internal/models"
)

func strPtr(s string) *string { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool { return &b }

func TestFromWireFormat_Defaults(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{ID: "l1", Title: "Bedsitter in Ruaka"})
	require.NoError(t, err)

	assert.Nil(t, got.AreaSqFt, "areaSqFt defaults to nil, not zero")
	assert.False(t, got.IsFeatured)
	assert.Zero(t, got.Views)
	assert.Zero(t, got.Saves)
	assert.Equal(t, models.StatusPendingVerification, got.Status)
	assert.NotNil(t, got.Amenities)
	assert.Empty(t, got.Images)
}

func TestFromWireFormat_ImageVariants(t *testing.T) {
	want := []models.Image{{ID: "img-0", URL: "http://x/a.jpg", AIScanStatus: models.ScanPending}}

	variants := map[string]json.RawMessage{
		"url list":        json.RawMessage(`["http://x/a.jpg"]`),
		"legacy object":   json.RawMessage(`[{"url": "http://x/a.jpg"}]`),
		"bare url":        json.RawMessage(`"http://x/a.jpg"`),
		"relational row":  json.RawMessage(`[{"url": "http://x/a.jpg", "ai_scan": {"status": ""}}]`),
	}

	for name, raw := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := FromWireFormat(models.ListingRecord{Images: raw})
			require.NoError(t, err)
			assert.Equal(t, want, got.Images)
		})
	}
}

func TestFromWireFormat_RelationalRowsCarryScanState(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": "i1", "url": "http://x/a.jpg", "ai_scan": {"status": "clear"}},
		{"id": "i2", "url": "http://x/b.jpg", "ai_scan": {"status": "flagged", "reason": "suspected scam"}},
		{"url": "http://x/c.jpg"}
	]`)

	got, err := FromWireFormat(models.ListingRecord{Images: raw})
	require.NoError(t, err)
	require.Len(t, got.Images, 3)

	assert.Equal(t, "i1", got.Images[0].ID)
	assert.Equal(t, models.ScanClear, got.Images[0].AIScanStatus)
	assert.Equal(t, models.ScanFlagged, got.Images[1].AIScanStatus)
	assert.Equal(t, "suspected scam", got.Images[1].AIScanReason)
	assert.Equal(t, "img-2", got.Images[2].ID, "missing id is synthesized from the index")
	assert.Equal(t, models.ScanPending, got.Images[2].AIScanStatus)
}

func TestFromWireFormat_ImageOrderPreserved(t *testing.T) {
	raw := json.RawMessage(`["http://x/1.jpg", "http://x/2.jpg", "http://x/3.jpg"]`)
	got, err := FromWireFormat(models.ListingRecord{Images: raw})
	require.NoError(t, err)

	require.Len(t, got.Images, 3)
	for i, img := range got.Images {
		assert.Equal(t, []string{"http://x/1.jpg", "http://x/2.jpg", "http://x/3.jpg"}[i], img.URL)
	}
}

func TestFromWireFormat_EmptyImages(t *testing.T) {
	for name, raw := range map[string]json.RawMessage{
		"absent":      nil,
		"null":        json.RawMessage(`null`),
		"empty array": json.RawMessage(`[]`),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := FromWireFormat(models.ListingRecord{Images: raw})
			require.NoError(t, err)
			assert.Empty(t, got.Images)
		})
	}
}

func TestFromWireFormat_AgentAbsent(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{AgentID: "A1"})
	require.NoError(t, err)

	assert.Equal(t, "A1", got.Agent.ID)
	assert.False(t, got.Agent.IsVerifiedAgent, "a placeholder must never read as verified")
	assert.Equal(t, "", got.Agent.Name)
	assert.Equal(t, "agent", got.Agent.Role)
}

func TestFromWireFormat_AgentJoined(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{
		AgentID: "A1",
		Agent:   &models.AgentRecord{ID: "A1", Name: "Wanjiku", IsVerified: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "Wanjiku", got.Agent.Name)
	assert.True(t, got.Agent.IsVerifiedAgent)
	assert.Equal(t, "", got.Agent.Phone)
}

func TestFromWireFormat_AgentJoinedRoleSourcedFromRecord(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{
		AgentID: "A1",
		Agent:   &models.AgentRecord{ID: "A1", Name: "Wanjiku"},
	})
	require.NoError(t, err)

	// Every joined field falls back to its zero value, including role;
	// only the absent-join placeholder fixes role to "agent".
	assert.Equal(t, "", got.Agent.Role)

	got, err = FromWireFormat(models.ListingRecord{
		AgentID: "A1",
		Agent:   &models.AgentRecord{ID: "A1", Role: "landlord"},
	})
	require.NoError(t, err)
	assert.Equal(t, "landlord", got.Agent.Role)
}

func TestFromWireFormat_LocationObject(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{
		Location: json.RawMessage(`{"address": "Moi Ave", "county": "Nairobi", "latitude": -1.28}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "Nairobi", got.Location.County)
	require.NotNil(t, got.Location.Latitude)
	assert.InDelta(t, -1.28, *got.Location.Latitude, 1e-9)
}

func TestFromWireFormat_LocationEncodedString(t *testing.T) {
	got, err := FromWireFormat(models.ListingRecord{
		Location: json.RawMessage(`"{\"county\": \"Kiambu\"}"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kiambu", got.Location.County)
}

func TestFromWireFormat_MalformedLocationIsHardError(t *testing.T) {
	_, err := FromWireFormat(models.ListingRecord{
		Location: json.RawMessage(`"{invalid json"`),
	})
	assert.Error(t, err, "malformed location JSON must propagate, not default")
}

func TestToWireFormat_Renames(t *testing.T) {
	patch := ToWireFormat(models.ListingDraft{
		AreaSqFt:   f64Ptr(650),
		IsFeatured: boolPtr(true),
		Title:      strPtr("2BR in Kilimani"),
	})

	assert.Equal(t, 650.0, patch["area_sq_ft"])
	assert.Equal(t, true, patch["is_featured"])
	assert.Equal(t, "2BR in Kilimani", patch["title"])
	assert.NotContains(t, patch, "areaSqFt")
	assert.NotContains(t, patch, "isFeatured")
}

func TestToWireFormat_OmitsAbsentFields(t *testing.T) {
	patch := ToWireFormat(models.ListingDraft{Title: strPtr("x")})
	assert.Len(t, patch, 1)
}

func TestToWireFormat_MapsImagesToWireShape(t *testing.T) {
	imgs := []models.Image{{ID: "i1", URL: "http://x/a.jpg", AIScanStatus: "clear"}}
	patch := ToWireFormat(models.ListingDraft{Images: &imgs})

	wire, ok := patch["images"].([]wireImage)
	require.True(t, ok)
	require.Len(t, wire, 1)
	assert.Equal(t, "i1", wire[0].ID)
	assert.Equal(t, "clear", wire[0].AIScanStatus)
}

func TestRoundTrip_RenamingIsBijective(t *testing.T) {
	draft := models.ListingDraft{
		Title:      strPtr("Studio in Westlands"),
		AreaSqFt:   f64Ptr(420),
		IsFeatured: boolPtr(true),
		Status:     strPtr(models.StatusAvailable),
	}
	patch := ToWireFormat(draft)

	rec := models.ListingRecord{
		Title:      patch["title"].(string),
		Status:     patch["status"].(string),
		IsFeatured: patch["is_featured"].(bool),
	}
	area := patch["area_sq_ft"].(float64)
	rec.AreaSqFt = &area

	got, err := FromWireFormat(rec)
	require.NoError(t, err)
	assert.Equal(t, *draft.Title, got.Title)
	assert.Equal(t, *draft.AreaSqFt, *got.AreaSqFt)
	assert.Equal(t, *draft.IsFeatured, got.IsFeatured)
	assert.Equal(t, *draft.Status, got.Status)
}

func TestImagesFromRows(t *testing.T) {
	rows := []models.ImageRow{
		{URL: "http://x/a.jpg", AIScan: models.AIScan{Status: models.ScanClear}},
		{URL: "http://x/b.jpg"},
	}

	got := ImagesFromRows(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "img-0", got[0].ID)
	assert.Equal(t, models.ScanClear, got[0].AIScanStatus)
	assert.Equal(t, models.ScanPending, got[1].AIScanStatus)
}
