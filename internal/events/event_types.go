package events

import (
	"time"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketCommented EventType = "ticket_commented"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ProjectID int64                 `json:"project_id"`
	Title     string                `json:"title"`
	Type      domain.TicketType     `json:"ticket_type"`
	Priority  domain.TicketPriority `json:"priority"`
}

// FieldTransition summarizes one audited field change.
type FieldTransition struct {
	Property string `json:"property"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// TicketUpdatedPayload lists the fields an accepted mutation touched.
type TicketUpdatedPayload struct {
	Changes []FieldTransition `json:"changes"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	CommentID   int64  `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}
