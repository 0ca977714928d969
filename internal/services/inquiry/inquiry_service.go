package inquiry

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/models"
)

// Service handles rental inquiries between tenants and listing agents.
type Service struct {
	cfg *config.Config
}

// NewService creates an inquiry service.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

type createRequest struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`
}

type statusRequest struct {
	Status string `json:"status"` // accepted, declined, canceled
}

// CreateInquiry opens a pending inquiry on a listing. An agent cannot
// inquire about their own listing, and a tenant gets one open inquiry per
// listing at a time.
func (s *Service) CreateInquiry(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req createRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	listingUUID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var agentID uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `
		SELECT agent_id, status FROM listings WHERE id = $1
	`, listingUUID).Scan(&agentID, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing not found"})
		}
		slog.Error("fetching listing", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	if status != models.StatusAvailable {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "listing is not available"})
	}
	if agentID == ident.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot inquire about your own listing"})
	}

	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM inquiries
			WHERE listing_id = $1 AND tenant_id = $2 AND status = $3
		)
	`, listingUUID, ident.ID, models.InquiryPending).Scan(&exists)

	if err != nil {
		slog.Error("checking open inquiry", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "you already have an open inquiry on this listing"})
	}

	inquiryID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO inquiries (id, listing_id, tenant_id, agent_id, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, inquiryID, listingUUID, ident.ID, agentID, req.Message, models.InquiryPending)

	if err != nil {
		slog.Error("creating inquiry", "listing_id", listingUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create inquiry"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      inquiryID,
	})
}

// GetMyInquiries returns inquiries where the caller is either side,
// filterable by role and status.
func (s *Service) GetMyInquiries(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	role := c.Query("role", "all") // tenant, agent, all
	statusFilter := c.Query("status")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	query := `
		SELECT i.id, i.listing_id, i.tenant_id, i.agent_id, i.message, i.status,
		       i.created_at, i.updated_at, l.title, t.name, a.name
		FROM inquiries i
		JOIN listings l ON l.id = i.listing_id
		LEFT JOIN agents t ON t.id = i.tenant_id
		LEFT JOIN agents a ON a.id = i.agent_id
		WHERE `

	args := []any{ident.ID}
	switch role {
	case "tenant":
		query += "i.tenant_id = $1"
	case "agent":
		query += "i.agent_id = $1"
	default:
		query += "(i.tenant_id = $1 OR i.agent_id = $1)"
	}

	if statusFilter != "" {
		args = append(args, statusFilter)
		query += " AND i.status = $" + strconv.Itoa(len(args))
	}

	args = append(args, limit, offset)
	query += " ORDER BY i.created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		slog.Error("listing inquiries", "user_id", ident.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load inquiries"})
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		var inq models.Inquiry
		var tenantName, agentName *string

		err := rows.Scan(&inq.ID, &inq.ListingID, &inq.TenantID, &inq.AgentID, &inq.Message,
			&inq.Status, &inq.CreatedAt, &inq.UpdatedAt, &inq.ListingTitle, &tenantName, &agentName)
		if err != nil {
			slog.Error("scanning inquiry", "error", err)
			continue
		}

		if tenantName != nil {
			inq.TenantName = *tenantName
		}
		if agentName != nil {
			inq.AgentName = *agentName
		}
		inquiries = append(inquiries, inq)
	}

	return c.JSON(fiber.Map{"inquiries": inquiries})
}

// UpdateInquiryStatus moves a pending inquiry to accepted, declined or
// canceled. The agent accepts or declines; the tenant cancels. Anything
// already resolved stays resolved.
func (s *Service) UpdateInquiryStatus(c fiber.Ctx) error {
	ident, ok := c.Locals("identity").(models.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	inquiryUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inquiry ID"})
	}

	var req statusRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Status != models.InquiryAccepted && req.Status != models.InquiryDeclined && req.Status != models.InquiryCanceled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inquiry status"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var inq models.Inquiry
	err = db.Pool.QueryRow(ctx, `
		SELECT id, tenant_id, agent_id, status FROM inquiries WHERE id = $1
	`, inquiryUUID).Scan(&inq.ID, &inq.TenantID, &inq.AgentID, &inq.Status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "inquiry not found"})
		}
		slog.Error("fetching inquiry", "inquiry_id", inquiryUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	switch req.Status {
	case models.InquiryAccepted, models.InquiryDeclined:
		if inq.AgentID != ident.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the listing agent can accept or decline"})
		}
	case models.InquiryCanceled:
		if inq.TenantID != ident.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the inquiring tenant can cancel"})
		}
	}

	if inq.Status != models.InquiryPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "inquiry is no longer pending"})
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2
	`, req.Status, inquiryUUID)

	if err != nil {
		slog.Error("updating inquiry status", "inquiry_id", inquiryUUID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update inquiry"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  req.Status,
	})
}
