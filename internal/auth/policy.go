package auth

import (
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// Action enumerates everything a caller can ask the tracker to do.
type Action string

const (
	ActionCreateProject    Action = "create_project"
	ActionEditProject      Action = "edit_project"
	ActionAssignUsers      Action = "assign_users"
	ActionAssignRole       Action = "assign_role"
	ActionEditTicket       Action = "edit_ticket"
	ActionViewTicket       Action = "view_ticket"
	ActionCreateTicket     Action = "create_ticket"
	ActionComment          Action = "comment"
	ActionUploadAttachment Action = "upload_attachment"
)

// rolePermissions is the single permission table. Callers pass role and action
// explicitly; nothing here reads session state.
var rolePermissions = map[domain.UserRole]map[Action]struct{}{
	domain.RoleAdmin: {
		ActionCreateProject:    {},
		ActionEditProject:      {},
		ActionAssignUsers:      {},
		ActionAssignRole:       {},
		ActionEditTicket:       {},
		ActionViewTicket:       {},
		ActionCreateTicket:     {},
		ActionComment:          {},
		ActionUploadAttachment: {},
	},
	domain.RoleProjectManager: {
		ActionAssignUsers:      {},
		ActionEditTicket:       {},
		ActionViewTicket:       {},
		ActionCreateTicket:     {},
		ActionComment:          {},
		ActionUploadAttachment: {},
	},
	domain.RoleDeveloper: {
		ActionEditTicket:       {},
		ActionViewTicket:       {},
		ActionCreateTicket:     {},
		ActionComment:          {},
		ActionUploadAttachment: {},
	},
	domain.RoleQualityAssurance: {
		ActionEditTicket:       {},
		ActionViewTicket:       {},
		ActionCreateTicket:     {},
		ActionComment:          {},
		ActionUploadAttachment: {},
	},
}

// Permitted reports whether the role may perform the action. Unknown roles,
// including the empty role of an unauthenticated caller, are denied every
// action.
func Permitted(role domain.UserRole, action Action) bool {
	actions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// EditableTicketFields returns the mutable ticket fields the role may change
// through edit_ticket. Developers and QA move tickets through the workflow but
// never retitle, reprioritize or reassign them.
func EditableTicketFields(role domain.UserRole) map[diff.TicketField]struct{} {
	switch role {
	case domain.RoleAdmin, domain.RoleProjectManager:
		all := make(map[diff.TicketField]struct{}, len(diff.MutableFields()))
		for _, field := range diff.MutableFields() {
			all[field] = struct{}{}
		}
		return all
	case domain.RoleDeveloper, domain.RoleQualityAssurance:
		return map[diff.TicketField]struct{}{
			diff.FieldStatus: {},
		}
	default:
		return map[diff.TicketField]struct{}{}
	}
}
