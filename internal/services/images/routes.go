package images

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers image routes. Staged uploads are public; the
// metadata-backed paths require authentication.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/listings/:id/images", s.UploadImages, authMiddleware)
	app.Post("/api/listings/:id/images/staged", s.StageImages)
	app.Delete("/api/images", s.DeleteImages, authMiddleware)
}
