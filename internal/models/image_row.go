package models

import (
	"time"

	"github.com/google/uuid"
)

// AIScan is the moderation sub-object stored on each property_images row.
type AIScan struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ImageRow is one row of the property_images table.
type ImageRow struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text,omitempty"`
	AIScan    AIScan    `json:"ai_scan"`
	PHash     string    `json:"phash,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
