package models

import "github.com/google/uuid"

// AgentRecord is the wire shape of an agent row, embedded into a listing
// record when the read path joined the agents table.
type AgentRecord struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Agent is the application shape. When the wire record carried no joined
// agent, only ID is set, Role is "agent" and IsVerifiedAgent is false.
type Agent struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	AvatarURL       string `json:"avatarUrl"`
	IsVerifiedAgent bool   `json:"isVerifiedAgent"`
	Role            string `json:"role"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	ID    uuid.UUID
	Email string
}
