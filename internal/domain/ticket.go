package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "Open"
	TicketStatusInProgress   TicketStatus = "In Progress"
	TicketStatusResolved     TicketStatus = "Resolved"
	TicketStatusInfoRequired TicketStatus = "Add. Info Required"
)

// Valid reports whether the status belongs to the closed vocabulary.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusInfoRequired:
		return true
	}
	return false
}

// TicketType enumerates the kind of request a ticket represents.
type TicketType string

const (
	TicketTypeBug     TicketType = "Bug/Error Report"
	TicketTypeFeature TicketType = "Feature Request"
	TicketTypeService TicketType = "Service Request"
	TicketTypeOther   TicketType = "Other"
)

// Valid reports whether the type belongs to the closed vocabulary.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeBug, TicketTypeFeature, TicketTypeService, TicketTypeOther:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Valid reports whether the priority belongs to the closed vocabulary.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// UnassignedDeveloperID is the sentinel developer reference for tickets
// without an assignee. Real ids start at 1.
const UnassignedDeveloperID int64 = 0

// Ticket is the aggregate for tracked issues. SubmitterID, ProjectID and
// CreatedAt are fixed at creation; every other field may change independently
// and each accepted change bumps UpdatedAt.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Type        TicketType
	Priority    TicketPriority
	SubmitterID int64
	ProjectID   int64
	DeveloperID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assigned reports whether the ticket has a developer.
func (t *Ticket) Assigned() bool {
	return t.DeveloperID != UnassignedDeveloperID
}
