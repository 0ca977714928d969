package saved

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
)

// Service handles a tenant's saved listings. Saving and unsaving keep the
// listing's saves counter in step inside one transaction.
type Service struct {
	cfg *config.Config
}

// NewService creates a saved-listings service.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

type saveRequest struct {
	ListingID string `json:"listing_id"`
}

// SaveListing adds a listing to the caller's saved set.
func (s *Service) SaveListing(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req saveRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	listingUUID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1 AND status = $2)
	`, listingUUID, models.StatusAvailable).Scan(&exists)

	if err != nil {
		slog.Error("checking listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing not found or not available"})
	}

	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM saved_listings WHERE user_id = $1 AND listing_id = $2)
	`, ident.ID, listingUUID).Scan(&exists)

	if err != nil {
		slog.Error("checking saved listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "listing already saved"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		slog.Error("beginning transaction", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	defer tx.Rollback(ctx)

	savedID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO saved_listings (id, user_id, listing_id) VALUES ($1, $2, $3)
	`, savedID, ident.ID, listingUUID)
	if err == nil {
		_, err = tx.Exec(ctx, "UPDATE listings SET saves = saves + 1 WHERE id = $1", listingUUID)
	}
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		slog.Error("saving listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      savedID,
	})
}

// UnsaveListing removes a listing from the caller's saved set.
func (s *Service) UnsaveListing(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		slog.Error("beginning transaction", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2
	`, ident.ID, listingUUID)
	if err != nil {
		slog.Error("unsaving listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unsave listing"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing is not saved"})
	}

	_, err = tx.Exec(ctx, "UPDATE listings SET saves = GREATEST(saves - 1, 0) WHERE id = $1", listingUUID)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		slog.Error("updating saves counter", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unsave listing"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListSaved returns the caller's saved listings, newest first.
func (s *Service) ListSaved(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.listing_id, s.created_at, l.title, l.price, l.status
		FROM saved_listings s
		JOIN listings l ON l.id = s.listing_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`, ident.ID, limit, offset)

	if err != nil {
		slog.Error("listing saved listings", "user_id", ident.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load saved listings"})
	}
	defer rows.Close()

	saved := []models.SavedListing{}
	for rows.Next() {
		var entry models.SavedListing
		var title, status string
		var price float64

		if err := rows.Scan(&entry.ID, &entry.ListingID, &entry.CreatedAt, &title, &price, &status); err != nil {
			slog.Error("scanning saved listing", "error", err)
			continue
		}

		entry.UserID = ident.ID
		entry.Listing = &models.PropertyListing{
			ID:     entry.ListingID.String(),
			Title:  title,
			Price:  price,
			Status: status,
		}
		saved = append(saved, entry)
	}

	return c.JSON(fiber.Map{"saved": saved})
}

// CheckSaved reports whether one listing is in the caller's saved set.
func (s *Service) CheckSaved(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM saved_listings WHERE user_id = $1 AND listing_id = $2)
	`, ident.ID, listingUUID).Scan(&exists)

	if err != nil {
		slog.Error("checking saved listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{"saved": exists})
}
