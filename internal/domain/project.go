package domain

import "time"

// Project groups tickets and scopes project-manager access.
type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMembership links a user to a project they work on.
type ProjectMembership struct {
	ProjectID int64
	UserID    int64
	CreatedAt time.Time
}
