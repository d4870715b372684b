// Package diff computes field-level deltas between a proposed ticket state and
// its persisted state. One pass yields both the new-value change set and the
// paired previous values, so the audit trail and the update statement can never
// disagree about what changed.
package diff

import (
	"strconv"
	"strings"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// TicketUpdate carries a proposed ticket state. Only mutable fields exist
// here; a nil field means "leave as is" and never produces a change. String
// values are trimmed before comparison, case preserved.
type TicketUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Type        *string
	Priority    *string
	DeveloperID *int64
}

// Compute diffs the proposed state against the current ticket and returns the
// fields whose values actually differ. Enum fields are validated against their
// closed vocabularies before entering the result; an out-of-vocabulary value
// yields a validation error and an empty ChangeSet. Developer references are
// compared by identifier.
func Compute(current *domain.Ticket, proposed TicketUpdate) (ChangeSet, error) {
	var cs ChangeSet

	if proposed.Title != nil {
		title := strings.TrimSpace(*proposed.Title)
		if title == "" {
			return ChangeSet{}, apperrors.NewValidationError("title cannot be empty", nil)
		}
		if title != current.Title {
			cs.add(FieldTitle, current.Title, title, title)
		}
	}

	if proposed.Description != nil {
		description := strings.TrimSpace(*proposed.Description)
		if description != current.Description {
			cs.add(FieldDescription, current.Description, description, description)
		}
	}

	if proposed.Status != nil {
		status := domain.TicketStatus(strings.TrimSpace(*proposed.Status))
		if !status.Valid() {
			return ChangeSet{}, apperrors.NewValidationError("unknown ticket status", map[string]any{
				"status": string(status),
			})
		}
		if status != current.Status {
			cs.add(FieldStatus, string(current.Status), string(status), status)
		}
	}

	if proposed.Type != nil {
		ticketType := domain.TicketType(strings.TrimSpace(*proposed.Type))
		if !ticketType.Valid() {
			return ChangeSet{}, apperrors.NewValidationError("unknown ticket type", map[string]any{
				"type": string(ticketType),
			})
		}
		if ticketType != current.Type {
			cs.add(FieldType, string(current.Type), string(ticketType), ticketType)
		}
	}

	if proposed.Priority != nil {
		priority := domain.TicketPriority(strings.TrimSpace(*proposed.Priority))
		if !priority.Valid() {
			return ChangeSet{}, apperrors.NewValidationError("unknown ticket priority", map[string]any{
				"priority": string(priority),
			})
		}
		if priority != current.Priority {
			cs.add(FieldPriority, string(current.Priority), string(priority), priority)
		}
	}

	if proposed.DeveloperID != nil {
		developerID := *proposed.DeveloperID
		if developerID < 0 {
			return ChangeSet{}, apperrors.NewValidationError("malformed developer reference", map[string]any{
				"developer_id": developerID,
			})
		}
		if developerID != current.DeveloperID {
			cs.add(FieldDeveloperID,
				strconv.FormatInt(current.DeveloperID, 10),
				strconv.FormatInt(developerID, 10),
				developerID)
		}
	}

	return cs, nil
}
