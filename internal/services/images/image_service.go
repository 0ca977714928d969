package images

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/models"
)

// Service exposes the image pipeline over HTTP.
type Service struct {
	cfg      *config.Config
	ingestor *Ingestor
}

// NewService creates an image service around the given ingestor.
func NewService(cfg *config.Config, ingestor *Ingestor) *Service {
	return &Service{cfg: cfg, ingestor: ingestor}
}

type deleteRequest struct {
	ImageIDs []string `json:"image_ids"`
}

// UploadImages ingests a multipart batch for one listing and reports the
// per-file outcomes alongside the successful URLs.
func (s *Service) UploadImages(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	files, total, err := filesFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := s.ingestor.IngestBatch(context.Background(), &ident, listingID, files)
	if err != nil {
		slog.Error("ingesting batch", "listing_id", listingID, "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"urls":     result.URLs,
		"outcomes": result.Outcomes,
		"uploaded": len(result.URLs),
		"total":    total,
	})
}

// StageImages uploads files without recording metadata. Used when the
// caller batches image sources before one combined metadata write.
func (s *Service) StageImages(c fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	files, total, err := filesFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result := s.ingestor.IngestBatchNoMetadata(context.Background(), listingID, files)

	return c.JSON(fiber.Map{
		"urls":     result.URLs,
		"outcomes": result.Outcomes,
		"uploaded": len(result.URLs),
		"total":    total,
	})
}

// DeleteImages removes the named images, returning the identifiers whose
// metadata is confirmed gone.
func (s *Service) DeleteImages(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req deleteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	deleted, err := s.ingestor.DeleteBatch(context.Background(), &ident, req.ImageIDs)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}

// filesFromForm reads the "files" multipart field into upload candidates.
func filesFromForm(c fiber.Ctx) ([]UploadFile, int, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, 0, err
	}

	headers := form.File["files"]
	files := make([]UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			slog.Warn("opening multipart file", "file", h.Filename, "error", err)
			continue
		}

		// Buffer the part so it outlives the multipart form; parts may be
		// disk-backed and are not readable after Close.
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Warn("reading multipart file", "file", h.Filename, "error", err)
			continue
		}

		files = append(files, UploadFile{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Size:        h.Size,
			Reader:      bytes.NewReader(data),
		})
	}
	return files, len(headers), nil
}
