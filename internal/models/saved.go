package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedListing is one saved-listings row.
type SavedListing struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ListingID uuid.UUID `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	Listing *PropertyListing `json:"listing,omitempty"`
}
