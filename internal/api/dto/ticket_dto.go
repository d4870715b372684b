package dto

import (
	"time"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest carries a proposed ticket state. Absent fields are left
// untouched; immutable fields cannot be expressed here at all.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Type        *string `json:"type"`
	Priority    *string `json:"priority"`
	DeveloperID *int64  `json:"developer_id"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	SubmitterID int64                 `json:"submitter_id"`
	ProjectID   int64                 `json:"project_id"`
	DeveloperID int64                 `json:"developer_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Type:        t.Type,
		Priority:    t.Priority,
		SubmitterID: t.SubmitterID,
		ProjectID:   t.ProjectID,
		DeveloperID: t.DeveloperID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FieldChangeResponse reports one applied change.
type FieldChangeResponse struct {
	Property string `json:"property"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// UpdateTicketResponse reports the outcome of a mutation request.
type UpdateTicketResponse struct {
	Ticket  TicketResponse        `json:"ticket"`
	Changed []FieldChangeResponse `json:"changed"`
	NoOp    bool                  `json:"noop"`
}

// CommentResponse is the wire shape of a comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	UploaderID int64     `json:"uploader_id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateAttachmentRequest describes attachment metadata input.
type CreateAttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	Notes      string `json:"notes"`
}
