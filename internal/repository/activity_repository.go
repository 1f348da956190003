package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ActivityRepository stores the append-only audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	CreateBatch(ctx context.Context, entries []domain.ActivityLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLog, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository instantiates repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

const insertActivity = `
    INSERT INTO activity_logs (ticket_id, user_id, action, details)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at`

func (r *activityRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	return r.pool.QueryRow(ctx, insertActivity,
		entry.TicketID,
		entry.UserID,
		entry.Action,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) CreateBatch(ctx context.Context, entries []domain.ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := range entries {
		if err := tx.QueryRow(ctx, insertActivity,
			entries[i].TicketID,
			entries[i].UserID,
			entries[i].Action,
			entries[i].Details,
		).Scan(&entries[i].ID, &entries[i].CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *activityRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLog, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, details, created_at
        FROM activity_logs WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Action,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
