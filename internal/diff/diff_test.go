package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func baseTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          1,
		Title:       "Login fails",
		Description: "500 on submit",
		Status:      domain.TicketStatusOpen,
		Type:        domain.TicketTypeBug,
		Priority:    domain.TicketPriorityLow,
		SubmitterID: 3,
		ProjectID:   2,
		DeveloperID: domain.UnassignedDeveloperID,
	}
}

func TestComputeIdenticalResubmissionIsEmpty(t *testing.T) {
	ticket := baseTicket()
	cs, err := Compute(ticket, TicketUpdate{
		Title:       strPtr(ticket.Title),
		Description: strPtr(ticket.Description),
		Status:      strPtr(string(ticket.Status)),
		Type:        strPtr(string(ticket.Type)),
		Priority:    strPtr(string(ticket.Priority)),
		DeveloperID: int64Ptr(ticket.DeveloperID),
	})
	require.NoError(t, err)
	assert.True(t, cs.Empty())
	assert.Zero(t, cs.Len())
}

func TestComputeNilFieldsNeverChange(t *testing.T) {
	cs, err := Compute(baseTicket(), TicketUpdate{})
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

func TestComputeIncludesOnlyChangedFields(t *testing.T) {
	ticket := baseTicket()
	cs, err := Compute(ticket, TicketUpdate{
		Status:      strPtr(string(domain.TicketStatusInProgress)),
		Priority:    strPtr(string(ticket.Priority)), // unchanged
		DeveloperID: int64Ptr(7),
	})
	require.NoError(t, err)

	require.Equal(t, 2, cs.Len())
	assert.Equal(t, []TicketField{FieldStatus, FieldDeveloperID}, cs.Fields())

	status, ok := cs.Change(FieldStatus)
	require.True(t, ok)
	assert.Equal(t, "Open", status.From)
	assert.Equal(t, "In Progress", status.To)
	assert.Equal(t, domain.TicketStatusInProgress, status.Value)

	dev, ok := cs.Change(FieldDeveloperID)
	require.True(t, ok)
	assert.Equal(t, "0", dev.From)
	assert.Equal(t, "7", dev.To)
	assert.Equal(t, int64(7), dev.Value)

	_, ok = cs.Change(FieldPriority)
	assert.False(t, ok)
}

func TestComputeCanonicalFieldOrder(t *testing.T) {
	ticket := baseTicket()
	cs, err := Compute(ticket, TicketUpdate{
		DeveloperID: int64Ptr(4),
		Title:       strPtr("Login fails on Safari"),
		Status:      strPtr(string(domain.TicketStatusResolved)),
	})
	require.NoError(t, err)
	assert.Equal(t, []TicketField{FieldTitle, FieldStatus, FieldDeveloperID}, cs.Fields())
}

func TestComputeTrimsStringsBeforeComparing(t *testing.T) {
	ticket := baseTicket()
	cs, err := Compute(ticket, TicketUpdate{
		Title:  strPtr("  Login fails  "),
		Status: strPtr(" Open "),
	})
	require.NoError(t, err)
	assert.True(t, cs.Empty(), "whitespace-only differences are not changes")

	cs, err = Compute(ticket, TicketUpdate{Title: strPtr("  New title  ")})
	require.NoError(t, err)
	change, ok := cs.Change(FieldTitle)
	require.True(t, ok)
	assert.Equal(t, "New title", change.To)
}

func TestComputeRejectsEmptyTitle(t *testing.T) {
	_, err := Compute(baseTicket(), TicketUpdate{Title: strPtr("   ")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestComputeRejectsUnknownEnumValues(t *testing.T) {
	tests := []struct {
		name     string
		proposed TicketUpdate
	}{
		{"status", TicketUpdate{Status: strPtr("Reopened")}},
		{"status case sensitive", TicketUpdate{Status: strPtr("open")}},
		{"type", TicketUpdate{Type: strPtr("Incident")}},
		{"priority", TicketUpdate{Priority: strPtr("Urgent")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, err := Compute(baseTicket(), tc.proposed)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
			assert.True(t, cs.Empty())
		})
	}
}

func TestComputeRejectsNegativeDeveloperID(t *testing.T) {
	_, err := Compute(baseTicket(), TicketUpdate{DeveloperID: int64Ptr(-1)})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestComputeUnassignIsAChange(t *testing.T) {
	ticket := baseTicket()
	ticket.DeveloperID = 9
	cs, err := Compute(ticket, TicketUpdate{DeveloperID: int64Ptr(domain.UnassignedDeveloperID)})
	require.NoError(t, err)
	change, ok := cs.Change(FieldDeveloperID)
	require.True(t, ok)
	assert.Equal(t, "9", change.From)
	assert.Equal(t, "0", change.To)
}

func TestChangeSetChangesReturnsCopy(t *testing.T) {
	cs, err := Compute(baseTicket(), TicketUpdate{Title: strPtr("Other title")})
	require.NoError(t, err)

	changes := cs.Changes()
	changes[0].To = "mutated"

	fresh, _ := cs.Change(FieldTitle)
	assert.Equal(t, "Other title", fresh.To)
}
