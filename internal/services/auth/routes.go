package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers auth routes. Register and login are public.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)
	app.Get("/api/auth/me", s.Me, authMiddleware)
}
