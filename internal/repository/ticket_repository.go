package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/diff"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// ticketColumns maps change-set fields to column names. Only entries of this
// map can ever reach a SET clause; user input never names a column.
var ticketColumns = map[diff.TicketField]string{
	diff.FieldTitle:       "title",
	diff.FieldDescription: "description",
	diff.FieldStatus:      "status",
	diff.FieldType:        "type",
	diff.FieldPriority:    "priority",
	diff.FieldDeveloperID: "developer_id",
}

// TicketFilter captures listing parameters.
type TicketFilter struct {
	ProjectID   *int64
	SubmitterID *int64
	DeveloperID *int64
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	Limit       int
	Offset      int
}

// DayCountFilter selects tickets for per-day aggregation.
type DayCountFilter struct {
	ProjectID   *int64
	Statuses    []domain.TicketStatus
	Since       time.Time
	ByUpdatedAt bool
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	WithTx(tx pgx.Tx) TicketRepository
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ApplyChangeSet(ctx context.Context, ticketID int64, cs diff.ChangeSet) error
	CountPerDay(ctx context.Context, filter DayCountFilter) (map[time.Time]int, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) WithTx(tx pgx.Tx) TicketRepository {
	return &ticketRepository{db: tx}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, type, priority, submitter_id, project_id, developer_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Type,
		ticket.Priority,
		ticket.SubmitterID,
		ticket.ProjectID,
		ticket.DeveloperID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, type, priority, submitter_id, project_id, developer_id, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Type,
		&ticket.Priority,
		&ticket.SubmitterID,
		&ticket.ProjectID,
		&ticket.DeveloperID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ApplyChangeSet persists exactly the fields present in the change set and
// bumps updated_at. All values are bound parameters; column names come from
// the fixed ticketColumns vocabulary.
func (r *ticketRepository) ApplyChangeSet(ctx context.Context, ticketID int64, cs diff.ChangeSet) error {
	if cs.Empty() {
		return nil
	}

	sets := make([]string, 0, cs.Len()+1)
	args := make([]any, 0, cs.Len()+1)
	for _, change := range cs.Changes() {
		column, ok := ticketColumns[change.Field]
		if !ok {
			return fmt.Errorf("unknown ticket field %q", change.Field)
		}
		args = append(args, change.Value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, ticketID)

	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, status, type, priority, submitter_id, project_id, developer_id, created_at, updated_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("submitter_id=$%d", len(args)))
	}
	if filter.DeveloperID != nil {
		args = append(args, *filter.DeveloperID)
		clauses = append(clauses, fmt.Sprintf("developer_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// CountPerDay buckets matching tickets into calendar days. Days are UTC days:
// the timestamp is shifted to UTC before date_trunc so the buckets do not
// depend on the Postgres session timezone, and the returned keys are UTC
// midnights that align with the keys the report layer builds.
func (r *ticketRepository) CountPerDay(ctx context.Context, filter DayCountFilter) (map[time.Time]int, error) {
	column := "created_at"
	if filter.ByUpdatedAt {
		column = "updated_at"
	}

	clauses := []string{fmt.Sprintf("%s >= $1", column)}
	args := []any{filter.Since}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`
        SELECT %s AS bucket, COUNT(*)
        FROM tickets WHERE %s
        GROUP BY bucket`, dayBucketExpr(column), strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[time.Time]int)
	for rows.Next() {
		var bucket time.Time
		var count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		counts[utcMidnight(bucket)] = count
	}
	return counts, rows.Err()
}

// dayBucketExpr truncates a TIMESTAMPTZ column to its UTC day. The AT TIME
// ZONE shift is what keeps bucketing stable across session timezones.
func dayBucketExpr(column string) string {
	return fmt.Sprintf("date_trunc('day', %s AT TIME ZONE 'UTC')", column)
}

// utcMidnight normalizes a scanned bucket to a UTC-midnight map key.
func utcMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Type,
			&ticket.Priority,
			&ticket.SubmitterID,
			&ticket.ProjectID,
			&ticket.DeveloperID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
