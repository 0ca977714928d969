package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/models"
)

// JWTService issues and validates access tokens.
type JWTService struct {
	secretKey string
}

// NewJWTService creates a JWT service with the given signing secret.
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GenerateToken issues a 24h access token for an agent.
func (s *JWTService) GenerateToken(userID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ExtractIdentity validates a token and returns the identity it carries.
func (s *JWTService) ExtractIdentity(tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return models.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, fmt.Errorf("invalid token")
	}

	rawID, ok := claims["user_id"].(string)
	if !ok {
		return models.Identity{}, fmt.Errorf("token missing user_id claim")
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid user_id claim: %w", err)
	}

	email, _ := claims["email"].(string)

	return models.Identity{ID: userID, Email: email}, nil
}
