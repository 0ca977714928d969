package ai

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/kejahunt/keja-api/internal/models"
)

// Service exposes content-assist endpoints to agents.
type Service struct {
	client *Client
}

// NewService wraps a client for HTTP use.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

type enhanceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type suggestRequest struct {
	Description string `json:"description"`
}

// EnhanceDescription rewrites the submitted description.
func (s *Service) EnhanceDescription(c fiber.Ctx) error {
	if _, ok := c.Locals("identity").(models.Identity); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req enhanceRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "description is required"})
	}

	text, err := s.client.EnhanceDescription(context.Background(), req.Title, req.Description)
	if err != nil {
		slog.Error("enhancing description", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "content service unavailable"})
	}

	return c.JSON(fiber.Map{"description": text})
}

// SuggestTitle proposes a title for the submitted description.
func (s *Service) SuggestTitle(c fiber.Ctx) error {
	if _, ok := c.Locals("identity").(models.Identity); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req suggestRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "description is required"})
	}

	title, err := s.client.SuggestTitle(context.Background(), req.Description)
	if err != nil {
		slog.Error("suggesting title", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "content service unavailable"})
	}

	return c.JSON(fiber.Map{"title": title})
}
