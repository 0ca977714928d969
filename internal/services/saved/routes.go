package saved

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers saved-listing routes, all authenticated.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/saved", s.SaveListing, authMiddleware)
	app.Delete("/api/saved/:id", s.UnsaveListing, authMiddleware)
	app.Get("/api/saved", s.ListSaved, authMiddleware)
	app.Get("/api/saved/:id", s.CheckSaved, authMiddleware)
}
