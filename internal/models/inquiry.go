package models

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry statuses.
const (
	InquiryPending  = "pending"
	InquiryAccepted = "accepted"
	InquiryDeclined = "declined"
	InquiryCanceled = "canceled"
)

// Inquiry is a tenant's rental inquiry on a listing.
type Inquiry struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated for API responses.
	ListingTitle string `json:"listing_title,omitempty"`
	TenantName   string `json:"tenant_name,omitempty"`
	AgentName    string `json:"agent_name,omitempty"`
}
