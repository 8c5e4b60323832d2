package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// SettingsHandler manages the admin SLA configuration endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settingsService}
}

// GetSettings GET /admin/sla/settings.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	snapshot, err := h.settings.Snapshot(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(snapshot)})
}

// UpdatePolicy PUT /admin/sla/policies/:priority.
func (h *SettingsHandler) UpdatePolicy(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority := domain.TicketPriority(c.Params("priority"))
	policy := domain.PrioritySLA{
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
		BusinessHoursOnly:   req.BusinessHoursOnly,
		Enabled:             req.Enabled,
	}
	if err := h.settings.UpdatePolicy(c.Context(), priority, policy); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": req})
}

// UpdateBusinessHours PUT /admin/sla/business-hours.
func (h *SettingsHandler) UpdateBusinessHours(c *fiber.Ctx) error {
	var req dto.BusinessHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return apperrors.NewValidationError("invalid start_time", map[string]any{"start_time": req.StartTime})
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return apperrors.NewValidationError("invalid end_time", map[string]any{"end_time": req.EndTime})
	}
	days := make([]time.Weekday, 0, len(req.WorkingDays))
	for _, d := range req.WorkingDays {
		if d < 0 || d > 6 {
			return apperrors.NewValidationError("working_days entries must be 0 (Sunday) through 6 (Saturday)", nil)
		}
		days = append(days, time.Weekday(d))
	}
	cfg := domain.BusinessHoursConfig{
		StartTime:   start,
		EndTime:     end,
		WorkingDays: days,
		Timezone:    req.Timezone,
	}
	if err := h.settings.UpdateBusinessHours(c.Context(), cfg); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": req})
}

// ListHolidays GET /admin/sla/holidays.
func (h *SettingsHandler) ListHolidays(c *fiber.Ctx) error {
	holidays, err := h.settings.Holidays(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.HolidayResponse, 0, len(holidays))
	for _, holiday := range holidays {
		items = append(items, dto.NewHolidayResponse(holiday))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateHoliday POST /admin/sla/holidays.
func (h *SettingsHandler) CreateHoliday(c *fiber.Ctx) error {
	var req dto.HolidayRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	holiday, err := h.settings.AddHoliday(c.Context(), req.Name, date, req.Recurring)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewHolidayResponse(*holiday)})
}

// DeleteHoliday DELETE /admin/sla/holidays/:id.
func (h *SettingsHandler) DeleteHoliday(c *fiber.Ctx) error {
	if err := h.settings.RemoveHoliday(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ImportHolidays POST /admin/sla/holidays/import.
func (h *SettingsHandler) ImportHolidays(c *fiber.Ctx) error {
	count, err := h.settings.ImportHolidayCalendarBytes(c.Context(), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"imported": count}})
}
