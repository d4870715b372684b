package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
)

// In-memory repository fakes. WithTx returns the fake itself and the fake
// transactor invokes the unit of work with a nil pgx.Tx, so transactional code
// paths run unchanged against maps.

type fakeTicketRepo struct {
	mu          sync.Mutex
	tickets     map[int64]*domain.Ticket
	nextID      int64
	applyCalls  int
	lastApplied diff.ChangeSet
	dayCounts   map[time.Time]int
	lastFilter  repository.DayCountFilter
	applyErr    error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}, nextID: 1}
}

func (f *fakeTicketRepo) put(ticket *domain.Ticket) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID == 0 {
		ticket.ID = f.nextID
		f.nextID++
	} else if ticket.ID >= f.nextID {
		f.nextID = ticket.ID + 1
	}
	f.tickets[ticket.ID] = ticket
	return ticket
}

func (f *fakeTicketRepo) WithTx(tx pgx.Tx) repository.TicketRepository { return f }

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	f.put(ticket)
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTicketRepo) ApplyChangeSet(ctx context.Context, ticketID int64, cs diff.ChangeSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, change := range cs.Changes() {
		switch change.Field {
		case diff.FieldTitle:
			ticket.Title = change.Value.(string)
		case diff.FieldDescription:
			ticket.Description = change.Value.(string)
		case diff.FieldStatus:
			ticket.Status = change.Value.(domain.TicketStatus)
		case diff.FieldType:
			ticket.Type = change.Value.(domain.TicketType)
		case diff.FieldPriority:
			ticket.Priority = change.Value.(domain.TicketPriority)
		case diff.FieldDeveloperID:
			ticket.DeveloperID = change.Value.(int64)
		}
	}
	ticket.UpdatedAt = time.Now()
	f.applyCalls++
	f.lastApplied = cs
	return nil
}

func (f *fakeTicketRepo) CountPerDay(ctx context.Context, filter repository.DayCountFilter) (map[time.Time]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	return f.dayCounts, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
	nextID  int64
	batches int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{nextID: 1}
}

func (f *fakeHistoryRepo) WithTx(tx pgx.Tx) repository.TicketHistoryRepository { return f }

func (f *fakeHistoryRepo) CreateBatch(ctx context.Context, records []domain.HistoryRecord) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	now := time.Now()
	out := make([]domain.HistoryRecord, 0, len(records))
	for _, record := range records {
		record.ID = f.nextID
		f.nextID++
		record.CreatedAt = now
		f.records = append(f.records, record)
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.HistoryRecord{}
	for _, record := range f.records {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[int64]*domain.User{}}
	for _, user := range users {
		f.users[user.ID] = user
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int64, role domain.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeProjectRepo struct {
	projects map[int64]*domain.Project
}

func newFakeProjectRepo(projects ...*domain.Project) *fakeProjectRepo {
	f := &fakeProjectRepo{projects: map[int64]*domain.Project{}}
	for _, project := range projects {
		f.projects[project.ID] = project
	}
	return f
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	project.ID = int64(len(f.projects) + 1)
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return project, nil
}

func (f *fakeProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.projects))
	for _, project := range f.projects {
		out = append(out, *project)
	}
	return out, nil
}

type fakeMembershipRepo struct {
	members map[int64]map[int64]bool
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: map[int64]map[int64]bool{}}
}

func (f *fakeMembershipRepo) Add(ctx context.Context, projectID, userID int64) error {
	if f.members[projectID] == nil {
		f.members[projectID] = map[int64]bool{}
	}
	f.members[projectID][userID] = true
	return nil
}

func (f *fakeMembershipRepo) Remove(ctx context.Context, projectID, userID int64) error {
	delete(f.members[projectID], userID)
	return nil
}

func (f *fakeMembershipRepo) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	return f.members[projectID][userID], nil
}

func (f *fakeMembershipRepo) ListMembers(ctx context.Context, projectID int64) ([]domain.User, error) {
	return nil, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	nextID   int64
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	out := []domain.Comment{}
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.AttachmentReference
	nextID      int64
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.AttachmentReference) error {
	f.nextID++
	attachment.ID = f.nextID
	attachment.CreatedAt = time.Now()
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AttachmentReference, error) {
	out := []domain.AttachmentReference{}
	for _, attachment := range f.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

type fakeTransactor struct {
	calls int
	err   error
}

func (f *fakeTransactor) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeSeriesCache struct {
	store map[string][]int
	gets  int
	sets  int
}

func newFakeSeriesCache() *fakeSeriesCache {
	return &fakeSeriesCache{store: map[string][]int{}}
}

func (f *fakeSeriesCache) Get(ctx context.Context, key string) ([]int, bool) {
	f.gets++
	series, ok := f.store[key]
	return series, ok
}

func (f *fakeSeriesCache) Set(ctx context.Context, key string, series []int, ttl time.Duration) {
	f.sets++
	f.store[key] = series
}
