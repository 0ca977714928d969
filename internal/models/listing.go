package models

import (
	"encoding/json"
)

// Listing status values. New listings always start unverified.
const (
	StatusAvailable           = "available"
	StatusRented              = "rented"
	StatusPendingVerification = "pending_verification"
)

// AI scan status values for listing images.
const (
	ScanPending = "pending"
	ScanClear   = "clear"
	ScanFlagged = "flagged"
)

// ListingRecord is the wire/storage shape of a listing: flat, snake_cased,
// with a location value that may be a JSON-encoded string or an object and
// an images value whose shape varies across schema generations.
type ListingRecord struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       float64         `json:"price,omitempty"`
	Bedrooms    int             `json:"bedrooms,omitempty"`
	Bathrooms   int             `json:"bathrooms,omitempty"`
	AreaSqFt    *float64        `json:"area_sq_ft,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Status      string          `json:"status,omitempty"`
	IsFeatured  bool            `json:"is_featured,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
	Views       int             `json:"views,omitempty"`
	Saves       int             `json:"saves,omitempty"`
	Geohash     string          `json:"geohash,omitempty"`
	Location    json.RawMessage `json:"location,omitempty"`
	Images      json.RawMessage `json:"images,omitempty"`
	AgentID     string          `json:"agent_id,omitempty"`
	Agent       *AgentRecord    `json:"agent,omitempty"`
}

// PropertyListing is the application shape: camelCased, with location
// always decoded, images always normalized and the agent always populated.
type PropertyListing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	AreaSqFt    *float64 `json:"areaSqFt"`
	Amenities   []string `json:"amenities"`
	Status      string   `json:"status"`
	IsFeatured  bool     `json:"isFeatured"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Views       int      `json:"views"`
	Saves       int      `json:"saves"`
	Location    Location `json:"location"`
	Images      []Image  `json:"images"`
	Agent       Agent    `json:"agent"`
}

// Location is the decoded location object.
type Location struct {
	Address      string   `json:"address"`
	County       string   `json:"county"`
	Neighborhood string   `json:"neighborhood"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Image is the normalized per-image application shape. ID and AIScanStatus
// are never empty after normalization.
type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	AltText      string `json:"altText,omitempty"`
	AIScanStatus string `json:"aiScanStatus"`
	AIScanReason string `json:"aiScanReason,omitempty"`
}

// ListingDraft carries a partial application-shaped listing for create and
// update calls. Nil fields are absent from the resulting wire record.
type ListingDraft struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Bedrooms    *int      `json:"bedrooms,omitempty"`
	Bathrooms   *int      `json:"bathrooms,omitempty"`
	AreaSqFt    *float64  `json:"areaSqFt,omitempty"`
	Amenities   *[]string `json:"amenities,omitempty"`
	Status      *string   `json:"status,omitempty"`
	IsFeatured  *bool     `json:"isFeatured,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Images      *[]Image  `json:"images,omitempty"`
}
