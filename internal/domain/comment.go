package domain

import "time"

// Comment is a user remark on a ticket.
type Comment struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}
