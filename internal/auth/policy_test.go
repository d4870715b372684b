package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

func TestPermitted(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.UserRole
		action Action
		want   bool
	}{
		{"admin creates projects", domain.RoleAdmin, ActionCreateProject, true},
		{"admin assigns roles", domain.RoleAdmin, ActionAssignRole, true},
		{"pm assigns users", domain.RoleProjectManager, ActionAssignUsers, true},
		{"pm cannot create projects", domain.RoleProjectManager, ActionCreateProject, false},
		{"pm cannot assign roles", domain.RoleProjectManager, ActionAssignRole, false},
		{"developer edits tickets", domain.RoleDeveloper, ActionEditTicket, true},
		{"developer cannot assign users", domain.RoleDeveloper, ActionAssignUsers, false},
		{"qa creates tickets", domain.RoleQualityAssurance, ActionCreateTicket, true},
		{"qa comments", domain.RoleQualityAssurance, ActionComment, true},
		{"qa cannot edit projects", domain.RoleQualityAssurance, ActionEditProject, false},
		{"empty role denied", domain.UserRole(""), ActionViewTicket, false},
		{"unknown role denied", domain.UserRole("superuser"), ActionViewTicket, false},
		{"unknown action denied", domain.RoleAdmin, Action("drop_tables"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Permitted(tc.role, tc.action))
		})
	}
}

func TestEditableTicketFields(t *testing.T) {
	all := diff.MutableFields()

	for _, role := range []domain.UserRole{domain.RoleAdmin, domain.RoleProjectManager} {
		fields := EditableTicketFields(role)
		assert.Len(t, fields, len(all), "role %s edits every mutable field", role)
		for _, field := range all {
			assert.Contains(t, fields, field)
		}
	}

	for _, role := range []domain.UserRole{domain.RoleDeveloper, domain.RoleQualityAssurance} {
		fields := EditableTicketFields(role)
		assert.Len(t, fields, 1, "role %s edits status only", role)
		assert.Contains(t, fields, diff.FieldStatus)
		assert.NotContains(t, fields, diff.FieldPriority)
		assert.NotContains(t, fields, diff.FieldDeveloperID)
	}

	assert.Empty(t, EditableTicketFields(domain.UserRole("intern")))
}
