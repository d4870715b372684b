package domain

import "time"

// UserRole enumerates actor roles. The role alone decides which mutation
// actions a caller may attempt.
type UserRole string

const (
	RoleAdmin            UserRole = "admin"
	RoleProjectManager   UserRole = "project_manager"
	RoleDeveloper        UserRole = "developer"
	RoleQualityAssurance UserRole = "quality_assurance"
)

// Valid reports whether the role belongs to the closed vocabulary.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleDeveloper, RoleQualityAssurance:
		return true
	}
	return false
}

// User is the domain model for every actor in the tracker.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
