package inquiry

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers inquiry routes, all authenticated.
func (s *Service) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/inquiries", s.CreateInquiry, authMiddleware)
	app.Get("/api/inquiries", s.GetMyInquiries, authMiddleware)
	app.Put("/api/inquiries/:id/status", s.UpdateInquiryStatus, authMiddleware)
}
