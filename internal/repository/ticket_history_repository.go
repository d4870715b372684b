package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// TicketHistoryRepository stores the per-field audit trail.
type TicketHistoryRepository interface {
	WithTx(tx pgx.Tx) TicketHistoryRepository
	CreateBatch(ctx context.Context, records []domain.HistoryRecord) ([]domain.HistoryRecord, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryRecord, error)
}

type ticketHistoryRepository struct {
	db Querier
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db Querier) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) WithTx(tx pgx.Tx) TicketHistoryRepository {
	return &ticketHistoryRepository{db: tx}
}

// CreateBatch inserts the records in the order given. Run it inside a
// transaction: NOW() is the transaction timestamp, so all rows of one mutation
// share it and serial ids preserve insertion order for tie-breaking. Any
// insert failure aborts the batch so a partial audit trail never commits.
func (r *ticketHistoryRepository) CreateBatch(ctx context.Context, records []domain.HistoryRecord) ([]domain.HistoryRecord, error) {
	const query = `
        INSERT INTO ticket_history (ticket_id, user_id, property, previous_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	for i := range records {
		if err := r.db.QueryRow(ctx, query,
			records[i].TicketID,
			records[i].UserID,
			records[i].Property,
			records[i].PreviousValue,
			records[i].NewValue,
		).Scan(&records[i].ID, &records[i].CreatedAt); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryRecord, error) {
	const query = `
        SELECT id, ticket_id, user_id, property, previous_value, new_value, created_at
        FROM ticket_history WHERE ticket_id=$1
        ORDER BY created_at DESC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryRecord
	for rows.Next() {
		var record domain.HistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.UserID,
			&record.Property,
			&record.PreviousValue,
			&record.NewValue,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
