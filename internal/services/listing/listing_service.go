package listing

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
)

// Service handles listing CRUD, search and the agent dashboard.
type Service struct {
	cfg *config.Config
}

// NewService creates a listing service.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

const listingColumns = `
	l.id, l.agent_id, l.title, l.description, l.price, l.bedrooms, l.bathrooms,
	l.area_sq_ft, l.amenities, l.status, l.is_featured, l.views, l.saves,
	l.geohash, l.location, l.images, l.created_at, l.updated_at,
	a.id, a.name, a.email, a.phone, a.avatar_url, a.is_verified, a.role`

// CreateListing inserts a new listing. Status is forced to
// pending_verification regardless of what the caller sent, and images
// submitted with the payload are recorded as a separate batch insert into
// property_images, never embedded in the listing row.
func (s *Service) CreateListing(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var draft models.ListingDraft
	if err := c.Bind().Body(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if draft.Title == nil || *draft.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	var loc models.Location
	if draft.Location != nil {
		loc = *draft.Location
	}

	amenities := []string{}
	if draft.Amenities != nil {
		amenities = *draft.Amenities
	}

	listingID := uuid.New()

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		slog.Error("beginning transaction", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO listings (id, agent_id, title, description, price, bedrooms, bathrooms,
		                      area_sq_ft, amenities, status, is_featured, geohash, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, listingID, ident.ID, *draft.Title, strVal(draft.Description), f64Val(draft.Price),
		intVal(draft.Bedrooms), intVal(draft.Bathrooms), draft.AreaSqFt, amenities,
		models.StatusPendingVerification, boolVal(draft.IsFeatured), locationGeohash(loc), loc)

	if err != nil {
		slog.Error("inserting listing", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if draft.Images != nil {
		now := time.Now().UTC()
		for i, img := range *draft.Images {
			_, err = tx.Exec(ctx, `
				INSERT INTO property_images (id, listing_id, url, alt_text, ai_scan, position)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, uuid.New(), listingID, img.URL, img.AltText,
				models.AIScan{Status: models.ScanPending, ScannedAt: now}, i)

			if err != nil {
				slog.Error("inserting listing image", "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		slog.Error("committing transaction", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"listing_id": listingID,
	})
}

// GetListing returns one listing in application shape and bumps its view
// counter. Store errors on the fetch propagate unchanged.
func (s *Service) GetListing(c fiber.Ctx) error {
	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		LEFT JOIN agents a ON a.id = l.agent_id
		WHERE l.id = $1
	`, listingUUID)

	rec, err := scanListingRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing not found"})
		}
		slog.Error("fetching listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	app, err := FromWireFormat(rec)
	if err != nil {
		slog.Error("normalizing listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	imageRows, err := fetchImageRows(ctx, listingUUID)
	if err != nil {
		slog.Error("fetching listing images", "listing_id", listingUUID, "error", err)
	} else if len(imageRows) > 0 {
		app.Images = ImagesFromRows(imageRows)
	}

	// Best effort; the fetch already succeeded.
	if _, err := db.Pool.Exec(ctx, "UPDATE listings SET views = views + 1 WHERE id = $1", listingUUID); err != nil {
		slog.Warn("incrementing views", "listing_id", listingUUID, "error", err)
	}

	return c.JSON(fiber.Map{"listing": app})
}

// SearchListings returns available listings matching the query filters.
func (s *Service) SearchListings(c fiber.Ctx) error {
	filters := searchFilters{
		Status:   c.Query("status", models.StatusAvailable),
		County:   c.Query("county"),
		Near:     c.Query("near"),
		Featured: c.Query("featured") == "true",
	}
	filters.MinPrice, _ = strconv.ParseFloat(c.Query("min_price", "0"), 64)
	filters.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price", "0"), 64)
	filters.Bedrooms, _ = strconv.Atoi(c.Query("bedrooms", "0"))

	limit := 20
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	where, args := buildSearchWhere(filters)
	args = append(args, limit, offset)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		LEFT JOIN agents a ON a.id = l.agent_id
		WHERE `+where+`
		ORDER BY l.is_featured DESC, l.created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)

	if err != nil {
		slog.Error("searching listings", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to search listings"})
	}
	defer rows.Close()

	listings := []models.PropertyListing{}
	for rows.Next() {
		rec, err := scanListingRecord(rows)
		if err != nil {
			slog.Error("scanning listing row", "error", err)
			continue
		}

		app, err := FromWireFormat(rec)
		if err != nil {
			slog.Error("normalizing listing", "listing_id", rec.ID, "error", err)
			continue
		}
		listings = append(listings, app)
	}
	rows.Close()

	// Rows from the per-image table override any legacy embedded shape.
	for i := range listings {
		id, err := uuid.Parse(listings[i].ID)
		if err != nil {
			continue
		}
		imageRows, err := fetchImageRows(ctx, id)
		if err != nil {
			slog.Error("fetching listing images", "listing_id", id, "error", err)
			continue
		}
		if len(imageRows) > 0 {
			listings[i].Images = ImagesFromRows(imageRows)
		}
	}

	var total int
	countArgs := args[:len(args)-2]
	if err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM listings l WHERE "+where, countArgs...).Scan(&total); err != nil {
		slog.Warn("counting listings", "error", err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateListing applies a partial update. Status never changes unless the
// caller set it explicitly; images in the draft are stripped and must go
// through the image pipeline.
func (s *Service) UpdateListing(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	var draft models.ListingDraft
	if err := c.Bind().Body(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT agent_id FROM listings WHERE id = $1", listingUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing not found"})
		}
		slog.Error("fetching listing owner", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if ownerID != ident.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "you do not own this listing"})
	}

	patch := ToWireFormat(draft)
	delete(patch, "images")
	if draft.Location != nil {
		patch["geohash"] = locationGeohash(*draft.Location)
	}

	if len(patch) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no fields to update"})
	}

	set, args := buildUpdate(patch)
	args = append(args, listingUUID)

	_, err = db.Pool.Exec(ctx,
		"UPDATE listings SET "+set+" WHERE id = $"+strconv.Itoa(len(args)), args...)
	if err != nil {
		slog.Error("updating listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"listing_id": listingUUID,
	})
}

// DeleteListing removes the listing row. Cascading cleanup of image rows
// and stored objects is the database's and the ops sweep's responsibility.
func (s *Service) DeleteListing(c fiber.Ctx) error {
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

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT agent_id FROM listings WHERE id = $1", listingUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing not found"})
		}
		slog.Error("fetching listing owner", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if ownerID != ident.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "you do not own this listing"})
	}

	if _, err = db.Pool.Exec(ctx, "DELETE FROM listings WHERE id = $1", listingUUID); err != nil {
		slog.Error("deleting listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetDashboard returns per-status counts and aggregate view/save totals for
// the authenticated agent's listings.
func (s *Service) GetDashboard(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(views), 0), COALESCE(SUM(saves), 0)
		FROM listings
		WHERE agent_id = $1
		GROUP BY status
	`, ident.ID)

	if err != nil {
		slog.Error("querying dashboard", "agent_id", ident.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load dashboard"})
	}
	defer rows.Close()

	byStatus := map[string]int{}
	var total, totalViews, totalSaves int
	for rows.Next() {
		var status string
		var count, views, saves int
		if err := rows.Scan(&status, &count, &views, &saves); err != nil {
			slog.Error("scanning dashboard row", "error", err)
			continue
		}
		byStatus[status] = count
		total += count
		totalViews += views
		totalSaves += saves
	}

	return c.JSON(fiber.Map{
		"total_listings": total,
		"by_status":      byStatus,
		"total_views":    totalViews,
		"total_saves":    totalSaves,
	})
}

// scanListingRecord scans one joined listings+agents row into the wire
// shape consumed by the normalizer.
func scanListingRecord(row pgx.Row) (models.ListingRecord, error) {
	var rec models.ListingRecord
	var id, agentID uuid.UUID
	var location, images []byte
	var geohash pgtype.Text
	var createdAt, updatedAt time.Time
	var aID *uuid.UUID
	var aName, aEmail, aPhone, aAvatar, aRole pgtype.Text
	var aVerified *bool

	err := row.Scan(
		&id, &agentID, &rec.Title, &rec.Description, &rec.Price, &rec.Bedrooms, &rec.Bathrooms,
		&rec.AreaSqFt, &rec.Amenities, &rec.Status, &rec.IsFeatured, &rec.Views, &rec.Saves,
		&geohash, &location, &images, &createdAt, &updatedAt,
		&aID, &aName, &aEmail, &aPhone, &aAvatar, &aVerified, &aRole,
	)
	if err != nil {
		return rec, err
	}

	rec.ID = id.String()
	rec.AgentID = agentID.String()
	rec.Geohash = geohash.String
	rec.Location = location
	rec.Images = images
	rec.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	if aID != nil {
		rec.Agent = &models.AgentRecord{
			ID:         aID.String(),
			Name:       aName.String,
			Email:      aEmail.String,
			Phone:      aPhone.String,
			AvatarURL:  aAvatar.String,
			IsVerified: aVerified != nil && *aVerified,
			Role:       aRole.String,
		}
	}

	return rec, nil
}

// fetchImageRows loads the property_images rows for one listing in stored
// order.
func fetchImageRows(ctx context.Context, listingID uuid.UUID) ([]models.ImageRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, listing_id, url, alt_text, ai_scan, phash, position, created_at
		FROM property_images
		WHERE listing_id = $1
		ORDER BY position ASC, created_at ASC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ImageRow
	for rows.Next() {
		var row models.ImageRow
		var altText, phash pgtype.Text
		var scan []byte

		if err := rows.Scan(&row.ID, &row.ListingID, &row.URL, &altText, &scan, &phash, &row.Position, &row.CreatedAt); err != nil {
			slog.Error("scanning image row", "error", err)
			continue
		}

		row.AltText = altText.String
		row.PHash = phash.String
		if scan != nil {
			if err := json.Unmarshal(scan, &row.AIScan); err != nil {
				slog.Warn("parsing ai_scan", "image_id", row.ID, "error", err)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func f64Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func boolVal(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
