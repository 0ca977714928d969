package ai

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers content-assist routes, all authenticated.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/ai/enhance-description", s.EnhanceDescription, authMiddleware)
	app.Post("/api/ai/suggest-title", s.SuggestTitle, authMiddleware)
}
