package domain

import "time"

// HistoryRecord is an immutable audit row: one changed ticket field, its
// before and after value rendered as text, and the acting user. Records are
// append-only and never created for immutable fields.
type HistoryRecord struct {
	ID            int64
	TicketID      int64
	UserID        int64
	Property      string
	PreviousValue string
	NewValue      string
	CreatedAt     time.Time
}
