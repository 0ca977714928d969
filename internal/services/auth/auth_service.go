package auth

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
	"github.com/kejahunt/keja-api/internal/utils"
)

// Service handles agent registration and login.
type Service struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewService creates an auth service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an agent account and returns an access token.
func (s *Service) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password are required"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters"})
	}

	if _, err := db.GetAgentByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email is already registered"})
	} else if err != pgx.ErrNoRows {
		slog.Error("checking existing agent", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hashing password", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
	}

	agent, err := db.CreateAgent(req.Name, req.Email, req.Phone, string(hash))
	if err != nil {
		slog.Error("creating agent", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
	}

	token, err := s.jwtService.GenerateToken(agent.ID, agent.Email)
	if err != nil {
		slog.Error("issuing token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"agent": agentResponse(agent),
	})
}

// Login checks credentials and returns an access token.
func (s *Service) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	agent, err := db.GetAgentByEmail(req.Email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
		}
		slog.Error("fetching agent", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	token, err := s.jwtService.GenerateToken(agent.ID, agent.Email)
	if err != nil {
		slog.Error("issuing token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "login failed"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"agent": agentResponse(agent),
	})
}

// Me returns the authenticated agent's profile.
func (s *Service) Me(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	agent, err := db.GetAgentByID(ident.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "agent not found"})
		}
		slog.Error("fetching agent", "agent_id", ident.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{"agent": agentResponse(agent)})
}

func agentResponse(a *db.Agent) models.Agent {
	return models.Agent{
		ID:              a.ID.String(),
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		AvatarURL:       a.AvatarURL,
		Role:            a.Role,
		IsVerifiedAgent: a.IsVerified,
	}
}

// GetJWTService exposes the token service for middleware wiring.
func (s *Service) GetJWTService() *utils.JWTService {
	return s.jwtService
}
