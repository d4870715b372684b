package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/dto"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/service"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// ReportsHandler exposes dashboard aggregation endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// TicketsPerDay handles GET /reports/tickets-per-day. Query params: status
// (required), days (default 14), project_id (optional).
func (h *ReportsHandler) TicketsPerDay(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status"))
	days := c.QueryInt("days", 14)

	var projectID *int64
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid project_id filter", nil)
		}
		projectID = &id
	}

	series, err := h.reports.CountByDay(c.UserContext(), projectID, status, days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DailySeriesResponse{
		Status: string(status),
		Days:   days,
		Series: series,
	}})
}
