package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// AuditHandler serves the admin dashboard's paginated action log and the
// service status counters.
type AuditHandler struct {
	audit   repository.AuditRepository
	metrics *observability.Metrics
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit repository.AuditRepository, metrics *observability.Metrics) *AuditHandler {
	return &AuditHandler{audit: audit, metrics: metrics}
}

// ListEntries handles GET /admin/audit?page=&per_page=.
func (h *AuditHandler) ListEntries(c *fiber.Ctx) error {
	page, perPage := pagination(c)

	entries, total, err := h.audit.List(c.UserContext(), perPage, (page-1)*perPage)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.PageResponse[dto.AuditEntryResponse]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}})
}

// Status handles GET /admin/status.
func (h *AuditHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Report()})
}
