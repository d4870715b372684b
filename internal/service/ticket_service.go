package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/events"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// TicketService coordinates ticket workflows, in particular the audited
// mutation path: diff the proposed state, apply only what changed, and record
// one history row per changed field in the same transaction.
type TicketService struct {
	tickets     repository.TicketRepository
	history     repository.TicketHistoryRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
	projects    repository.ProjectRepository
	memberships repository.ProjectMembershipRepository
	tx          repository.Transactor
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	HistoryRepo    repository.TicketHistoryRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
	ProjectRepo    repository.ProjectRepository
	MembershipRepo repository.ProjectMembershipRepository
	Transactor     repository.Transactor
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ProjectID   int64
	Title       string
	Description string
	Type        domain.TicketType
	Priority    domain.TicketPriority
}

// AttachmentInput defines attachment metadata captured alongside a ticket.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	Notes      string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		history:     deps.HistoryRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
		projects:    deps.ProjectRepo,
		memberships: deps.MembershipRepo,
		tx:          deps.Transactor,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a new ticket. Status is fixed to Open and the developer
// to Unassigned; submitter and project never change afterwards.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionCreateTicket) {
		return nil, apperrors.NewForbidden("role may not create tickets")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": string(input.Type)})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityLow
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket priority", map[string]any{"priority": string(priority)})
	}

	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": input.ProjectID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Type:        input.Type,
		Priority:    priority,
		SubmitterID: actor.ID,
		ProjectID:   input.ProjectID,
		DeveloperID: domain.UnassignedDeveloperID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			ProjectID: ticket.ProjectID,
			Title:     ticket.Title,
			Type:      ticket.Type,
			Priority:  ticket.Priority,
		},
	})
	return ticket, nil
}

// UpdateTicket is the audited mutation path. It permits the actor, diffs the
// proposed state against the persisted one, and either returns the unchanged
// ticket with an empty ChangeSet (a no-op: no write, no history, no timestamp
// bump) or applies every changed field and its audit rows in one transaction.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, proposed diff.TicketUpdate) (*domain.Ticket, diff.ChangeSet, error) {
	if actor == nil {
		return nil, diff.ChangeSet{}, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionEditTicket) {
		return nil, diff.ChangeSet{}, apperrors.NewForbidden("role may not edit tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, diff.ChangeSet{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, diff.ChangeSet{}, apperrors.NewStorageFailure(err)
	}

	if err := s.checkProjectScope(ctx, actor, ticket.ProjectID); err != nil {
		return nil, diff.ChangeSet{}, err
	}

	cs, err := diff.Compute(ticket, proposed)
	if err != nil {
		return nil, diff.ChangeSet{}, err
	}

	editable := auth.EditableTicketFields(actor.Role)
	for _, field := range cs.Fields() {
		if _, ok := editable[field]; !ok {
			return nil, diff.ChangeSet{}, apperrors.NewForbidden("role may not change field " + string(field))
		}
	}

	if cs.Empty() {
		// identical resubmission; nothing to apply, nothing to record
		return ticket, cs, nil
	}

	if change, ok := cs.Change(diff.FieldDeveloperID); ok {
		developerID, _ := change.Value.(int64)
		if developerID != domain.UnassignedDeveloperID {
			if _, err := s.users.GetByID(ctx, developerID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, diff.ChangeSet{}, apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
				}
				return nil, diff.ChangeSet{}, apperrors.NewStorageFailure(err)
			}
		}
	}

	records := historyRecords(cs, actor.ID, ticket.ID)
	err = s.tx.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.tickets.WithTx(tx).ApplyChangeSet(ctx, ticket.ID, cs); err != nil {
			return err
		}
		_, err := s.history.WithTx(tx).CreateBatch(ctx, records)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, diff.ChangeSet{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, diff.ChangeSet{}, apperrors.NewStorageFailure(err)
	}

	updated, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, diff.ChangeSet{}, apperrors.NewStorageFailure(err)
	}

	payload := events.TicketUpdatedPayload{}
	for _, change := range cs.Changes() {
		payload.Changes = append(payload.Changes, events.FieldTransition{
			Property: string(change.Field),
			From:     change.From,
			To:       change.To,
		})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  payload,
	})
	return updated, cs, nil
}

// GetTicket fetches a ticket with its comments and attachments.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, []domain.Comment, []domain.AttachmentReference, error) {
	if actor == nil {
		return nil, nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionViewTicket) {
		return nil, nil, nil, apperrors.NewForbidden("role may not view tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, nil, apperrors.NewStorageFailure(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.NewStorageFailure(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.NewStorageFailure(err)
	}
	return ticket, comments, attachments, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionViewTicket) {
		return nil, apperrors.NewForbidden("role may not view tickets")
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return tickets, nil
}

// AddComment appends a comment to a ticket.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, body string) (*domain.Comment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionComment) {
		return nil, apperrors.NewForbidden("role may not comment")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   actor.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentedPayload{
			CommentID:   comment.ID,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// AddAttachment records attachment metadata; the blob itself already lives in
// the external object store under StorageKey.
func (s *TicketService) AddAttachment(ctx context.Context, actor *domain.User, ticketID int64, input AttachmentInput) (*domain.AttachmentReference, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionUploadAttachment) {
		return nil, apperrors.NewForbidden("role may not upload attachments")
	}
	if strings.TrimSpace(input.StorageKey) == "" {
		return nil, apperrors.NewValidationError("storage key is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	attachment := &domain.AttachmentReference{
		TicketID:   ticket.ID,
		UploaderID: actor.ID,
		StorageKey: strings.TrimSpace(input.StorageKey),
		FileName:   strings.TrimSpace(input.FileName),
		Notes:      strings.TrimSpace(input.Notes),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return attachment, nil
}

// checkProjectScope restricts project managers to tickets in projects they
// belong to. Admins see everything; developers and QA are already limited to
// the status field, matching how the tracker hands out work.
func (s *TicketService) checkProjectScope(ctx context.Context, actor *domain.User, projectID int64) error {
	if actor.Role != domain.RoleProjectManager {
		return nil
	}
	member, err := s.memberships.IsMember(ctx, projectID, actor.ID)
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	if !member {
		return apperrors.NewForbidden("project manager not assigned to this project")
	}
	return nil
}

// historyRecords pairs each changed field with its pre-mutation value,
// captured from the diff snapshot rather than re-read after the update.
func historyRecords(cs diff.ChangeSet, actorID, ticketID int64) []domain.HistoryRecord {
	records := make([]domain.HistoryRecord, 0, cs.Len())
	for _, change := range cs.Changes() {
		records = append(records, domain.HistoryRecord{
			TicketID:      ticketID,
			UserID:        actorID,
			Property:      string(change.Field),
			PreviousValue: change.From,
			NewValue:      change.To,
		})
	}
	return records
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stringPreview shortens a comment body for event payloads. Truncation counts
// runes, never bytes, so multi-byte text stays valid UTF-8.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
