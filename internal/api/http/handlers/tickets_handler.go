package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/dto"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/observability"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/service"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// TicketsHandler exposes the ticket CRUD and audit endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	history *service.HistoryService
	metrics *observability.Metrics
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, history *service.HistoryService, metrics *observability.Metrics) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, history: history, metrics: metrics}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.TicketType(req.Type),
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Get handles GET /tickets/:id, returning the ticket with comments and
// attachment metadata.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ticket, comments, attachments, err := h.tickets.GetTicket(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}

	commentResponses := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		commentResponses = append(commentResponses, dto.CommentResponse{
			ID:        comment.ID,
			UserID:    comment.UserID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
		})
	}
	attachmentResponses := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		attachmentResponses = append(attachmentResponses, dto.AttachmentResponse{
			ID:         attachment.ID,
			UploaderID: attachment.UploaderID,
			StorageKey: attachment.StorageKey,
			FileName:   attachment.FileName,
			Notes:      attachment.Notes,
			CreatedAt:  attachment.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":      dto.NewTicketResponse(ticket),
		"comments":    commentResponses,
		"attachments": attachmentResponses,
	}})
}

// List handles GET /tickets with optional filters.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)

	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid project_id filter", nil)
		}
		filter.ProjectID = &id
	}
	if raw := c.Query("developer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid developer_id filter", nil)
		}
		filter.DeveloperID = &id
	}
	if raw := c.Query("submitter_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid submitter_id filter", nil)
		}
		filter.SubmitterID = &id
	}
	for _, raw := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(raw))
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(raw))
	}
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		filter.SearchTerm = &raw
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	responses := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": responses, "meta": fiber.Map{
		"limit":  filter.Limit,
		"offset": filter.Offset,
		"count":  len(responses),
	}})
}

// Update handles PATCH /tickets/:id. A request that changes nothing succeeds
// with noop=true and an empty changed list.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}

	ticket, cs, err := h.tickets.UpdateTicket(c.UserContext(), actor, ticketID, diff.TicketUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Type:        req.Type,
		Priority:    req.Priority,
		DeveloperID: req.DeveloperID,
	})
	if err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordTicketMutation(cs.Len())
	}

	changed := make([]dto.FieldChangeResponse, 0, cs.Len())
	for _, change := range cs.Changes() {
		changed = append(changed, dto.FieldChangeResponse{
			Property: string(change.Field),
			From:     change.From,
			To:       change.To,
		})
	}
	return c.JSON(fiber.Map{"data": dto.UpdateTicketResponse{
		Ticket:  dto.NewTicketResponse(ticket),
		Changed: changed,
		NoOp:    cs.Empty(),
	}})
}

// History handles GET /tickets/:id/history, newest entries first.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.history.TicketHistory(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

// AddComment handles POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	comment, err := h.tickets.AddComment(c.UserContext(), actor, ticketID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}})
}

// AddAttachment handles POST /tickets/:id/attachments.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	attachment, err := h.tickets.AddAttachment(c.UserContext(), actor, ticketID, service.AttachmentInput{
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AttachmentResponse{
		ID:         attachment.ID,
		UploaderID: attachment.UploaderID,
		StorageKey: attachment.StorageKey,
		FileName:   attachment.FileName,
		Notes:      attachment.Notes,
		CreatedAt:  attachment.CreatedAt,
	}})
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+param, map[string]any{param: c.Params(param)})
	}
	return id, nil
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
