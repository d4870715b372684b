package service

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/events"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

type ticketFixture struct {
	svc         *TicketService
	tickets     *fakeTicketRepo
	history     *fakeHistoryRepo
	users       *fakeUserRepo
	projects    *fakeProjectRepo
	memberships *fakeMembershipRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
	tx          *fakeTransactor
	dispatcher  events.Dispatcher
	published   *[]events.Event
}

func newTicketFixture(users ...*domain.User) *ticketFixture {
	f := &ticketFixture{
		tickets:     newFakeTicketRepo(),
		history:     newFakeHistoryRepo(),
		users:       newFakeUserRepo(users...),
		projects:    newFakeProjectRepo(&domain.Project{ID: 2, Name: "Tracker"}),
		memberships: newFakeMembershipRepo(),
		comments:    &fakeCommentRepo{},
		attachments: &fakeAttachmentRepo{},
		tx:          &fakeTransactor{},
		dispatcher:  events.NewInMemoryDispatcher(),
	}

	published := &[]events.Event{}
	f.published = published
	capture := func(ctx context.Context, event events.Event) error {
		*published = append(*published, event)
		return nil
	}
	f.dispatcher.Subscribe(events.EventTicketCreated, capture)
	f.dispatcher.Subscribe(events.EventTicketUpdated, capture)
	f.dispatcher.Subscribe(events.EventTicketCommented, capture)

	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		HistoryRepo:    f.history,
		CommentRepo:    f.comments,
		AttachmentRepo: f.attachments,
		UserRepo:       f.users,
		ProjectRepo:    f.projects,
		MembershipRepo: f.memberships,
		Transactor:     f.tx,
		Dispatcher:     f.dispatcher,
	})
	return f
}

func admin() *domain.User {
	return &domain.User{ID: 1, Name: "Ada Admin", Email: "ada@example.com", Role: domain.RoleAdmin}
}

func developer(id int64, name string) *domain.User {
	return &domain.User{ID: id, Name: name, Role: domain.RoleDeveloper}
}

func seedTicket(f *ticketFixture) *domain.Ticket {
	return f.tickets.put(&domain.Ticket{
		Title:       "Login fails",
		Description: "500 on submit",
		Status:      domain.TicketStatusOpen,
		Type:        domain.TicketTypeBug,
		Priority:    domain.TicketPriorityLow,
		SubmitterID: 3,
		ProjectID:   2,
		DeveloperID: domain.UnassignedDeveloperID,
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	})
}

func TestUpdateTicketAppliesChangesAndRecordsHistory(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor, developer(7, "Devon"))
	ticket := seedTicket(f)

	status := string(domain.TicketStatusInProgress)
	devID := int64(7)
	updated, cs, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{
		Status:      &status,
		DeveloperID: &devID,
	})
	require.NoError(t, err)

	require.Equal(t, 2, cs.Len())
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, int64(7), updated.DeveloperID)
	assert.Equal(t, 1, f.tx.calls, "update and audit share one transaction")
	assert.Equal(t, 1, f.tickets.applyCalls)
	assert.Equal(t, 1, f.history.batches)

	// one history row per changed field, previous values captured pre-write
	require.Len(t, f.history.records, 2)
	assert.Equal(t, "status", f.history.records[0].Property)
	assert.Equal(t, "Open", f.history.records[0].PreviousValue)
	assert.Equal(t, "In Progress", f.history.records[0].NewValue)
	assert.Equal(t, actor.ID, f.history.records[0].UserID)
	assert.Equal(t, "developer_id", f.history.records[1].Property)
	assert.Equal(t, "0", f.history.records[1].PreviousValue)
	assert.Equal(t, "7", f.history.records[1].NewValue)

	require.Len(t, *f.published, 1)
	event := (*f.published)[0]
	assert.Equal(t, events.EventTicketUpdated, event.Type)
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	require.True(t, ok)
	assert.Len(t, payload.Changes, 2)
}

func TestUpdateTicketNoOpLeavesNoTrace(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)
	before := ticket.UpdatedAt

	title := ticket.Title
	status := string(ticket.Status)
	devID := ticket.DeveloperID
	updated, cs, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{
		Title:       &title,
		Status:      &status,
		DeveloperID: &devID,
	})
	require.NoError(t, err, "identical resubmission is not an error")

	assert.True(t, cs.Empty())
	assert.Equal(t, 0, f.tx.calls)
	assert.Equal(t, 0, f.tickets.applyCalls)
	assert.Empty(t, f.history.records)
	assert.Empty(t, *f.published)
	assert.True(t, updated.UpdatedAt.Equal(before), "no-op must not bump updated_at")
}

func TestUpdateTicketRequiresActor(t *testing.T) {
	f := newTicketFixture()
	ticket := seedTicket(f)

	status := string(domain.TicketStatusResolved)
	_, _, err := f.svc.UpdateTicket(context.Background(), nil, ticket.ID, diff.TicketUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestUpdateTicketFieldRestrictionByRole(t *testing.T) {
	actor := developer(5, "Devon")
	f := newTicketFixture(actor)
	ticket := seedTicket(f)

	// developers may move status
	status := string(domain.TicketStatusInProgress)
	_, cs, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())

	// but never priority
	priority := string(domain.TicketPriorityCritical)
	_, _, err = f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{Priority: &priority})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	assert.Equal(t, 1, f.tickets.applyCalls, "rejected mutation must not write")
	assert.Len(t, f.history.records, 1)
}

func TestUpdateTicketUnknownEnumRejected(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)

	status := "Reopened"
	_, _, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, 0, f.tickets.applyCalls)
}

func TestUpdateTicketMissingTicket(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)

	status := string(domain.TicketStatusResolved)
	_, _, err := f.svc.UpdateTicket(context.Background(), actor, 404, diff.TicketUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateTicketUnknownDeveloperRejected(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)

	devID := int64(99)
	_, _, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{DeveloperID: &devID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Equal(t, 0, f.tickets.applyCalls)
	assert.Empty(t, f.history.records)
}

func TestUpdateTicketUnassignSkipsDeveloperLookup(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)
	ticket.DeveloperID = 7
	f.tickets.put(ticket)

	devID := domain.UnassignedDeveloperID
	updated, cs, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{DeveloperID: &devID})
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())
	assert.Equal(t, domain.UnassignedDeveloperID, updated.DeveloperID)
}

func TestUpdateTicketProjectManagerScope(t *testing.T) {
	pm := &domain.User{ID: 4, Name: "Pat", Role: domain.RoleProjectManager}
	f := newTicketFixture(pm)
	ticket := seedTicket(f)

	status := string(domain.TicketStatusResolved)
	_, _, err := f.svc.UpdateTicket(context.Background(), pm, ticket.ID, diff.TicketUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	require.NoError(t, f.memberships.Add(context.Background(), ticket.ProjectID, pm.ID))
	_, cs, err := f.svc.UpdateTicket(context.Background(), pm, ticket.ID, diff.TicketUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())
}

func TestCreateTicketDefaults(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)

	ticket, err := f.svc.CreateTicket(context.Background(), actor, TicketCreateInput{
		ProjectID:   2,
		Title:       "  Export broken  ",
		Description: "CSV export times out",
		Type:        domain.TicketTypeBug,
	})
	require.NoError(t, err)

	assert.Equal(t, "Export broken", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityLow, ticket.Priority, "priority defaults to Low")
	assert.Equal(t, domain.UnassignedDeveloperID, ticket.DeveloperID)
	assert.Equal(t, actor.ID, ticket.SubmitterID)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventTicketCreated, (*f.published)[0].Type)
}

func TestCreateTicketValidation(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)

	_, err := f.svc.CreateTicket(context.Background(), actor, TicketCreateInput{
		ProjectID: 2, Title: "  ", Type: domain.TicketTypeBug,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.svc.CreateTicket(context.Background(), actor, TicketCreateInput{
		ProjectID: 2, Title: "x", Type: domain.TicketType("Incident"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.svc.CreateTicket(context.Background(), actor, TicketCreateInput{
		ProjectID: 404, Title: "x", Type: domain.TicketTypeBug,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAddCommentValidatesAndPublishes(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)

	_, err := f.svc.AddComment(context.Background(), actor, ticket.ID, "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	comment, err := f.svc.AddComment(context.Background(), actor, ticket.ID, "  reproduced on staging  ")
	require.NoError(t, err)
	assert.Equal(t, "reproduced on staging", comment.Body)
	assert.Equal(t, actor.ID, comment.UserID)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventTicketCommented, (*f.published)[0].Type)
}

func TestAddAttachmentRequiresStorageKey(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)

	_, err := f.svc.AddAttachment(context.Background(), actor, ticket.ID, AttachmentInput{FileName: "log.txt"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	attachment, err := f.svc.AddAttachment(context.Background(), actor, ticket.ID, AttachmentInput{
		StorageKey: "tickets/1/log.txt",
		FileName:   "log.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, attachment.UploaderID)
	assert.Equal(t, "tickets/1/log.txt", attachment.StorageKey)
}

func TestStringPreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{"short body unchanged", "all good", 120, "all good"},
		{"trimmed", "  padded  ", 120, "padded"},
		{"ascii truncated with ellipsis", "abcdefghij", 8, "abcde..."},
		{"exact length unchanged", "abcdefgh", 8, "abcdefgh"},
		{"tiny max has no ellipsis", "abcdefgh", 2, "ab"},
		{"multibyte truncated on rune boundary", "日本語のコメント本文", 7, "日本語の..."},
		{"accented truncated on rune boundary", "héllo wörld étc", 9, "héllo ..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := stringPreview(tc.body, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got), "preview must stay valid UTF-8")
		})
	}
}

func TestUpdateTicketStorageFailureSurfacesAsStorageError(t *testing.T) {
	actor := admin()
	f := newTicketFixture(actor)
	ticket := seedTicket(f)
	f.tx.err = assert.AnError

	status := string(domain.TicketStatusResolved)
	_, _, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID, diff.TicketUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStorageFailure))
	assert.Empty(t, *f.published, "no event for a mutation that did not commit")
}
