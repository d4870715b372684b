package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// unassignedLabel is how the zero developer sentinel renders for display.
const unassignedLabel = "Unassigned"

// HistoryEntry is one audit row prepared for display: user references are
// resolved to names, values stay text.
type HistoryEntry struct {
	Property      string    `json:"property"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	ChangedBy     string    `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
}

// HistoryService reconstructs displayable audit trails. Resolution is a pure
// read-side join; stored records are never touched.
type HistoryService struct {
	tickets repository.TicketRepository
	history repository.TicketHistoryRepository
	users   repository.UserRepository
}

// NewHistoryService constructs the service.
func NewHistoryService(tickets repository.TicketRepository, history repository.TicketHistoryRepository, users repository.UserRepository) *HistoryService {
	return &HistoryService{tickets: tickets, history: history, users: users}
}

// TicketHistory returns the ticket's audit trail newest-first. Rows from one
// mutation share a timestamp and keep their original field order. The acting
// user, and both values of developer-assignment rows, resolve to names.
func (s *HistoryService) TicketHistory(ctx context.Context, actor *domain.User, ticketID int64) ([]HistoryEntry, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionViewTicket) {
		return nil, apperrors.NewForbidden("role may not view tickets")
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	records, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	names, err := s.resolveNames(ctx, records)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entry := HistoryEntry{
			Property:      record.Property,
			PreviousValue: record.PreviousValue,
			NewValue:      record.NewValue,
			ChangedBy:     names.lookup(record.UserID),
			ChangedAt:     record.CreatedAt,
		}
		if record.Property == string(diff.FieldDeveloperID) {
			entry.PreviousValue = names.lookupText(record.PreviousValue)
			entry.NewValue = names.lookupText(record.NewValue)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type nameIndex map[int64]string

func (n nameIndex) lookup(id int64) string {
	if id == domain.UnassignedDeveloperID {
		return unassignedLabel
	}
	if name, ok := n[id]; ok {
		return name
	}
	return "Unknown"
}

func (n nameIndex) lookupText(raw string) string {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return n.lookup(id)
}

// resolveNames batches one user fetch for every id the trail mentions: actors
// plus developer-assignment values.
func (s *HistoryService) resolveNames(ctx context.Context, records []domain.HistoryRecord) (nameIndex, error) {
	seen := map[int64]struct{}{}
	ids := []int64{}
	collect := func(id int64) {
		if id == domain.UnassignedDeveloperID {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, record := range records {
		collect(record.UserID)
		if record.Property == string(diff.FieldDeveloperID) {
			if id, err := strconv.ParseInt(record.PreviousValue, 10, 64); err == nil {
				collect(id)
			}
			if id, err := strconv.ParseInt(record.NewValue, 10, 64); err == nil {
				collect(id)
			}
		}
	}

	index := nameIndex{}
	if len(ids) == 0 {
		return index, nil
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	for _, user := range users {
		index[user.ID] = user.Name
	}
	return index, nil
}
