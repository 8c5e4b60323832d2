package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// SLAHandler serves deadline computations to the surrounding helpdesk.
type SLAHandler struct {
	sla *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{sla: slaService}
}

// Preview POST /sla/preview.
func (h *SLAHandler) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" || req.SubmittedAt == "" {
		return apperrors.NewValidationError("priority and submitted_at required", nil)
	}
	submittedAt, err := dto.ParseInstant(req.SubmittedAt)
	if err != nil {
		return apperrors.NewValidationError("submitted_at must be RFC3339 or epoch milliseconds", map[string]any{
			"submitted_at": req.SubmittedAt,
		})
	}

	expectation, err := h.sla.ExpectationFor(c.Context(), req.Priority, submittedAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExpectationResponse(expectation)})
}

// TicketSLA GET /tickets/:id/sla.
func (h *SLAHandler) TicketSLA(c *fiber.Ctx) error {
	ticket, expectation, err := h.sla.ExpectationForTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSLAResponse{
		TicketID:    ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		SubmittedAt: ticket.CreatedAt,
		Expectation: dto.NewExpectationResponse(expectation),
	}})
}
