package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter is the typed predicate for ticket list queries. The visibility
// builder in the service layer fills the scope fields; handlers never touch
// them directly.
type TicketFilter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Categories   []domain.TicketCategory
	CreatedByID  *string
	AssignedToID *string
	// Unassigned restricts to assigned_to_id IS NULL.
	Unassigned bool
	// AssignedAny restricts to assigned_to_id IS NOT NULL.
	AssignedAny bool
	// QueueScopeID expands to (assigned_to_id=$ OR assigned_to_id IS NULL OR
	// created_by_id=$): a technician's own queue, the unclaimed pool, and
	// tickets they filed.
	QueueScopeID *string
	// OwnScopeID expands to (assigned_to_id=$ OR created_by_id=$). Applied
	// when a technician asks for another technician's assignments.
	OwnScopeID *string
	// Search matches title/description case-insensitively, or the exact
	// ticket number when it parses as an integer.
	Search *string
	Limit  int
	Offset int
}

// TicketCounts holds one aggregation bucket.
type TicketCounts struct {
	Key   string
	Count int64
}

// SLAOutcome tallies resolved-in-time vs breached tickets.
type SLAOutcome struct {
	Met      int64
	Breached int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create persists the ticket, its attachments, and the initial activity
	// log entry in one transaction. No partial ticket is ever visible.
	Create(ctx context.Context, ticket *domain.Ticket, attachments []domain.Attachment, log *domain.ActivityLog) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListAttachments(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	// DeleteBatch removes the given tickets with their activity logs,
	// comments, and attachments as one transaction, returning how many
	// ticket rows were actually deleted. Unknown ids are skipped.
	DeleteBatch(ctx context.Context, ids []string) (int64, error)
	CountByStatus(ctx context.Context) ([]TicketCounts, error)
	CountByPriority(ctx context.Context) ([]TicketCounts, error)
	CountByCategory(ctx context.Context) ([]TicketCounts, error)
	CountAssignedTo(ctx context.Context, userID string) (int64, error)
	SLAOutcomes(ctx context.Context) (SLAOutcome, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, status, priority, category, type,
           created_by_id, assigned_to_id, location, device, os, is_operational,
           solution, root_cause, time_spent_minutes, requires_followup, rating, feedback,
           sla_deadline, created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, attachments []domain.Attachment, log *domain.ActivityLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (title, description, status, priority, category, type, created_by_id,
            location, device, os, is_operational, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, ticket_number, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.Type,
		ticket.CreatedByID,
		ticket.Location,
		ticket.Device,
		ticket.OS,
		ticket.IsOperational,
		ticket.SLADeadline,
	).Scan(&ticket.ID, &ticket.TicketNumber, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	const insertAttachment = `
        INSERT INTO attachments (ticket_id, filename, url, size_bytes, mime_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, uploaded_at`
	for i := range attachments {
		attachments[i].TicketID = ticket.ID
		if err := tx.QueryRow(ctx, insertAttachment,
			ticket.ID,
			attachments[i].Filename,
			attachments[i].URL,
			attachments[i].SizeBytes,
			attachments[i].MimeType,
		).Scan(&attachments[i].ID, &attachments[i].UploadedAt); err != nil {
			return err
		}
	}

	if log != nil {
		const insertLog = `
            INSERT INTO activity_logs (ticket_id, user_id, action, details)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at`
		log.TicketID = ticket.ID
		if err := tx.QueryRow(ctx, insertLog, ticket.ID, log.UserID, log.Action, log.Details).
			Scan(&log.ID, &log.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            assigned_to_id=$6, solution=$7, root_cause=$8, time_spent_minutes=$9,
            requires_followup=$10, rating=$11, feedback=$12, resolved_at=$13, closed_at=$14,
            updated_at=NOW()
        WHERE id=$15`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedToID,
		ticket.Solution,
		ticket.RootCause,
		ticket.TimeSpentMinutes,
		ticket.RequiresFollowup,
		ticket.Rating,
		ticket.Feedback,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_to_id IS NULL")
	}
	if filter.AssignedAny {
		clauses = append(clauses, "assigned_to_id IS NOT NULL")
	}
	if filter.QueueScopeID != nil {
		args = append(args, *filter.QueueScopeID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(assigned_to_id=%s OR assigned_to_id IS NULL OR created_by_id=%s)", placeholder, placeholder))
	}
	if filter.OwnScopeID != nil {
		args = append(args, *filter.OwnScopeID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(assigned_to_id=%s OR created_by_id=%s)", placeholder, placeholder))
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
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		term := strings.TrimSpace(*filter.Search)
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		textClause := fmt.Sprintf("LOWER(title) LIKE %s OR LOWER(description) LIKE %s", placeholder, placeholder)
		if number, ok := parseTicketNumber(term); ok {
			args = append(args, number)
			textClause += fmt.Sprintf(" OR ticket_number=$%d", len(args))
		}
		clauses = append(clauses, "("+textClause+")")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAttachments(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, filename, url, size_bytes, mime_type, uploaded_at
        FROM attachments WHERE ticket_id=$1 ORDER BY uploaded_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(&att.ID, &att.TicketID, &att.Filename, &att.URL, &att.SizeBytes, &att.MimeType, &att.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}

func (r *ticketRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM activity_logs WHERE ticket_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE ticket_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE ticket_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context) ([]TicketCounts, error) {
	return r.countBy(ctx, "status")
}

func (r *ticketRepository) CountByPriority(ctx context.Context) ([]TicketCounts, error) {
	return r.countBy(ctx, "priority")
}

func (r *ticketRepository) CountByCategory(ctx context.Context) ([]TicketCounts, error) {
	return r.countBy(ctx, "category")
}

func (r *ticketRepository) countBy(ctx context.Context, column string) ([]TicketCounts, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM tickets GROUP BY %s`, column, column)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketCounts
	for rows.Next() {
		var bucket TicketCounts
		if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
			return nil, err
		}
		result = append(result, bucket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountAssignedTo(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE assigned_to_id=$1 AND status NOT IN ('RESOLVED','CLOSED')`
	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *ticketRepository) SLAOutcomes(ctx context.Context) (SLAOutcome, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE resolved_at IS NOT NULL AND resolved_at <= sla_deadline),
            COUNT(*) FILTER (WHERE (resolved_at IS NOT NULL AND resolved_at > sla_deadline)
                                OR (resolved_at IS NULL AND sla_deadline < NOW()))
        FROM tickets`
	var outcome SLAOutcome
	err := r.pool.QueryRow(ctx, query).Scan(&outcome.Met, &outcome.Breached)
	return outcome, err
}

// escapeLike neutralizes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func parseTicketNumber(s string) (int64, bool) {
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, false
	}
	// reject partial parses like "12abc"
	if fmt.Sprintf("%d", n) != s {
		return 0, false
	}
	return n, true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Type,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.Location,
		&ticket.Device,
		&ticket.OS,
		&ticket.IsOperational,
		&ticket.Solution,
		&ticket.RootCause,
		&ticket.TimeSpentMinutes,
		&ticket.RequiresFollowup,
		&ticket.Rating,
		&ticket.Feedback,
		&ticket.SLADeadline,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
