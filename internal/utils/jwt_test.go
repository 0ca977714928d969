package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "agent@keja.test")
	require.NoError(t, err)

	ident, err := svc.ExtractIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, userID, ident.ID)
	assert.Equal(t, "agent@keja.test", ident.Email)
}

func TestExtractIdentity_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateToken(uuid.New(), "x@y.z")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ExtractIdentity(token)
	assert.Error(t, err)
}

func TestExtractIdentity_Garbage(t *testing.T) {
	_, err := NewJWTService("test-secret").ExtractIdentity("not.a.token")
	assert.Error(t, err)
}
