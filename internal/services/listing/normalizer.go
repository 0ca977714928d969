package listing

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/models"
)

// The backend's schema evolved from embedding images as a JSON column to a
// normalized per-image table. This file is the only place that resolves the
// historical shape ambiguity; every read path must route through it.

// imageInputKind tags the historical shapes the images column can carry.
type imageInputKind int

const (
	imageInputEmpty imageInputKind = iota
	imageInputBareURL
	imageInputURLList
	imageInputLegacyObjects
	imageInputRelationalRows
)

// wireImage is the legacy embedded-JSON image object; any subset of its
// fields may be present.
type wireImage struct {
	ID           string `json:"id,omitempty"`
	URL          string `json:"url,omitempty"`
	AltText      string `json:"altText,omitempty"`
	AIScanStatus string `json:"aiScanStatus,omitempty"`
	AIScanReason string `json:"aiScanReason,omitempty"`
}

// relationalImage is the per-image-table row shape as it appears when a
// read joined property_images into the listing payload.
type relationalImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	AIScan *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"ai_scan"`
}

// FromWireFormat converts a possibly-partial wire record into a fully
// populated PropertyListing. Every target field has a defined default; the
// only failure mode is malformed location JSON, which is returned as an
// error rather than silently defaulted.
func FromWireFormat(rec models.ListingRecord) (models.PropertyListing, error) {
	loc, err := parseLocation(rec.Location)
	if err != nil {
		return models.PropertyListing{}, err
	}

	status := rec.Status
	if status == "" {
		status = models.StatusPendingVerification
	}

	amenities := rec.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return models.PropertyListing{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Price:       rec.Price,
		Bedrooms:    rec.Bedrooms,
		Bathrooms:   rec.Bathrooms,
		AreaSqFt:    rec.AreaSqFt,
		Amenities:   amenities,
		Status:      status,
		IsFeatured:  rec.IsFeatured,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Views:       rec.Views,
		Saves:       rec.Saves,
		Location:    loc,
		Images:      NormalizeImages(rec.Images),
		Agent:       agentFromWire(rec),
	}, nil
}

// ToWireFormat maps a partial application-shaped draft to a wire-shaped
// column map: camelCase names are renamed to their snake_cased columns and
// never appear in the output. Values are passed through unvalidated; that
// is the caller's and the database's job.
func ToWireFormat(draft models.ListingDraft) map[string]any {
	patch := make(map[string]any)

	if draft.Title != nil {
		patch["title"] = *draft.Title
	}
	if draft.Description != nil {
		patch["description"] = *draft.Description
	}
	if draft.Price != nil {
		patch["price"] = *draft.Price
	}
	if draft.Bedrooms != nil {
		patch["bedrooms"] = *draft.Bedrooms
	}
	if draft.Bathrooms != nil {
		patch["bathrooms"] = *draft.Bathrooms
	}
	if draft.AreaSqFt != nil {
		patch["area_sq_ft"] = *draft.AreaSqFt
	}
	if draft.Amenities != nil {
		patch["amenities"] = *draft.Amenities
	}
	if draft.Status != nil {
		patch["status"] = *draft.Status
	}
	if draft.IsFeatured != nil {
		patch["is_featured"] = *draft.IsFeatured
	}
	if draft.Location != nil {
		patch["location"] = *draft.Location
	}
	if draft.Images != nil {
		// Only the legacy embedded-JSON path uses this; the primary write
		// path strips images and routes them through property_images.
		wire := make([]wireImage, 0, len(*draft.Images))
		for _, img := range *draft.Images {
			wire = append(wire, wireImage{
				ID:           img.ID,
				URL:          img.URL,
				AltText:      img.AltText,
				AIScanStatus: img.AIScanStatus,
				AIScanReason: img.AIScanReason,
			})
		}
		patch["images"] = wire
	}

	return patch
}

// NormalizeImages converts any historical images shape into the normalized
// list. Output order equals input order; IDs are synthesized as img-<index>
// when missing and the scan status defaults to pending.
func NormalizeImages(raw json.RawMessage) []models.Image {
	switch classifyImageInput(raw) {
	case imageInputBareURL:
		return imagesFromBareURL(raw)
	case imageInputURLList:
		return imagesFromURLList(raw)
	case imageInputRelationalRows:
		return imagesFromRelationalRows(raw)
	case imageInputLegacyObjects:
		return imagesFromLegacyObjects(raw)
	default:
		return []models.Image{}
	}
}

// classifyImageInput decides which historical shape the raw value carries.
// Relational rows win when the first array element is an object exposing an
// id or url key, per the read-path priority order.
func classifyImageInput(raw json.RawMessage) imageInputKind {
	if len(raw) == 0 {
		return imageInputEmpty
	}

	var any interface{}
	if err := json.Unmarshal(raw, &any); err != nil {
		return imageInputEmpty
	}

	switch v := any.(type) {
	case string:
		if v == "" {
			return imageInputEmpty
		}
		return imageInputBareURL
	case []interface{}:
		if len(v) == 0 {
			return imageInputEmpty
		}
		switch first := v[0].(type) {
		case string:
			return imageInputURLList
		case map[string]interface{}:
			if _, ok := first["id"]; ok {
				return imageInputRelationalRows
			}
			if _, ok := first["url"]; ok {
				return imageInputRelationalRows
			}
			return imageInputLegacyObjects
		}
	}
	return imageInputEmpty
}

func imagesFromBareURL(raw json.RawMessage) []models.Image {
	var url string
	if err := json.Unmarshal(raw, &url); err != nil {
		return []models.Image{}
	}
	return []models.Image{{ID: "img-0", URL: url, AIScanStatus: models.ScanPending}}
}

func imagesFromURLList(raw json.RawMessage) []models.Image {
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return []models.Image{}
	}
	out := make([]models.Image, 0, len(urls))
	for i, url := range urls {
		out = append(out, models.Image{
			ID:           fmt.Sprintf("img-%d", i),
			URL:          url,
			AIScanStatus: models.ScanPending,
		})
	}
	return out
}

func imagesFromRelationalRows(raw json.RawMessage) []models.Image {
	var rows []relationalImage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []models.Image{}
	}
	out := make([]models.Image, 0, len(rows))
	for i, row := range rows {
		img := models.Image{
			ID:           row.ID,
			URL:          row.URL,
			AIScanStatus: models.ScanPending,
		}
		if img.ID == "" {
			img.ID = fmt.Sprintf("img-%d", i)
		}
		if row.AIScan != nil {
			if row.AIScan.Status != "" {
				img.AIScanStatus = row.AIScan.Status
			}
			img.AIScanReason = row.AIScan.Reason
		}
		out = append(out, img)
	}
	return out
}

func imagesFromLegacyObjects(raw json.RawMessage) []models.Image {
	var objs []wireImage
	if err := json.Unmarshal(raw, &objs); err != nil {
		return []models.Image{}
	}
	out := make([]models.Image, 0, len(objs))
	for i, obj := range objs {
		img := models.Image{
			ID:           obj.ID,
			URL:          obj.URL,
			AltText:      obj.AltText,
			AIScanStatus: obj.AIScanStatus,
			AIScanReason: obj.AIScanReason,
		}
		if img.ID == "" {
			img.ID = fmt.Sprintf("img-%d", i)
		}
		if img.AIScanStatus == "" {
			img.AIScanStatus = models.ScanPending
		}
		out = append(out, img)
	}
	return out
}

// ImagesFromRows normalizes property_images rows, the current storage
// shape, into the application image list.
func ImagesFromRows(rows []models.ImageRow) []models.Image {
	out := make([]models.Image, 0, len(rows))
	for i, row := range rows {
		img := models.Image{
			ID:           row.ID.String(),
			URL:          row.URL,
			AltText:      row.AltText,
			AIScanStatus: row.AIScan.Status,
			AIScanReason: row.AIScan.Reason,
		}
		if row.ID == uuid.Nil {
			img.ID = fmt.Sprintf("img-%d", i)
		}
		if img.AIScanStatus == "" {
			img.AIScanStatus = models.ScanPending
		}
		out = append(out, img)
	}
	return out
}

// parseLocation decodes the location column. A string value is itself
// JSON-encoded and is parsed a second time; a malformed inner document is a
// hard error by design.
func parseLocation(raw json.RawMessage) (models.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.Location{}, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		var loc models.Location
		if err := json.Unmarshal([]byte(encoded), &loc); err != nil {
			return models.Location{}, fmt.Errorf("parsing location JSON: %w", err)
		}
		return loc, nil
	}

	var loc models.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return models.Location{}, fmt.Errorf("parsing location JSON: %w", err)
	}
	return loc, nil
}

// agentFromWire applies the agent-reference invariant: a joined sub-record
// populates every field with zero-value fallbacks; an absent join yields an
// ID-only placeholder that can never read as verified.
func agentFromWire(rec models.ListingRecord) models.Agent {
	if rec.Agent != nil {
		return models.Agent{
			ID:              rec.Agent.ID,
			Name:            rec.Agent.Name,
			Email:           rec.Agent.Email,
			Phone:           rec.Agent.Phone,
			AvatarURL:       rec.Agent.AvatarURL,
			IsVerifiedAgent: rec.Agent.IsVerified,
			Role:            rec.Agent.Role,
		}
	}

	return models.Agent{
		ID:              rec.AgentID,
		Role:            "agent",
		IsVerifiedAgent: false,
	}
}
