package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Agent is a registered account in the agents table. PasswordHash never
// leaves this package's callers; it is excluded from API responses at the
// model layer.
type Agent struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	AvatarURL    string
	Role         string
	IsVerified   bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const agentColumns = `
	id, name, email, phone, avatar_url, role, is_verified, password_hash, created_at, updated_at`

// GetAgentByID fetches one agent by primary key.
func GetAgentByID(agentID uuid.UUID) (*Agent, error) {
	ctx, cancel := GetContext()
	defer cancel()

	row := Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, agentID)
	return scanAgent(row)
}

// GetAgentByEmail fetches one agent by email, used by login.
func GetAgentByEmail(email string) (*Agent, error) {
	ctx, cancel := GetContext()
	defer cancel()

	row := Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE email = $1`, email)
	return scanAgent(row)
}

// CreateAgent inserts a new agent account and returns it.
func CreateAgent(name, email, phone, passwordHash string) (*Agent, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var agentID uuid.UUID
	err := Pool.QueryRow(ctx, `
		INSERT INTO agents (name, email, phone, role, password_hash)
		VALUES ($1, $2, $3, 'agent', $4)
		RETURNING id
	`, name, email, phone, passwordHash).Scan(&agentID)
	if err != nil {
		return nil, err
	}

	row := Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, agentID)
	return scanAgent(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*Agent, error) {
	var a Agent
	var name, phone, avatarURL, role pgtype.Text

	err := row.Scan(&a.ID, &name, &a.Email, &phone, &avatarURL, &role,
		&a.IsVerified, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Name = name.String
	a.Phone = phone.String
	a.AvatarURL = avatarURL.String
	a.Role = role.String
	if a.Role == "" {
		a.Role = "agent"
	}

	return &a, nil
}
