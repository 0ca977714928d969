package listing

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers listing routes. Browse and detail are public;
// writes and the dashboard require authentication.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Get("/api/listings", s.SearchListings)
	app.Get("/api/listings/:id", s.GetListing)

	app.Post("/api/listings", s.CreateListing, authMiddleware)
	app.Put("/api/listings/:id", s.UpdateListing, authMiddleware)
	app.Delete("/api/listings/:id", s.DeleteListing, authMiddleware)

	app.Get("/api/agents/dashboard", s.GetDashboard, authMiddleware)
}
