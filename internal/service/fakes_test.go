package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory repository fakes. They mimic the postgres behavior the services
// rely on, including pgx.ErrNoRows for missing rows.

type fakeTicketRepo struct {
	tickets     map[string]*domain.Ticket
	attachments map[string][]domain.Attachment
	createdLogs []domain.ActivityLog
	lastFilter  repository.TicketFilter
	nextNumber  int64
	seq         int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:     map[string]*domain.Ticket{},
		attachments: map[string][]domain.Attachment{},
		nextNumber:  1000,
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket, attachments []domain.Attachment, log *domain.ActivityLog) error {
	f.seq++
	f.nextNumber++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.TicketNumber = f.nextNumber
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	for i := range attachments {
		attachments[i].TicketID = ticket.ID
	}
	f.attachments[ticket.ID] = attachments
	if log != nil {
		entry := *log
		entry.TicketID = ticket.ID
		f.createdLogs = append(f.createdLogs, entry)
	}
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByNumber(_ context.Context, number int64) (*domain.Ticket, error) {
	for _, ticket := range f.tickets {
		if ticket.TicketNumber == number {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.lastFilter = filter
	result := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListAttachments(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	return f.attachments[ticketID], nil
}

func (f *fakeTicketRepo) DeleteBatch(_ context.Context, ids []string) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := f.tickets[id]; ok {
			delete(f.tickets, id)
			delete(f.attachments, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) CountByStatus(_ context.Context) ([]repository.TicketCounts, error) {
	return f.countBy(func(t *domain.Ticket) string { return string(t.Status) })
}

func (f *fakeTicketRepo) CountByPriority(_ context.Context) ([]repository.TicketCounts, error) {
	return f.countBy(func(t *domain.Ticket) string { return string(t.Priority) })
}

func (f *fakeTicketRepo) CountByCategory(_ context.Context) ([]repository.TicketCounts, error) {
	return f.countBy(func(t *domain.Ticket) string { return string(t.Category) })
}

func (f *fakeTicketRepo) countBy(key func(*domain.Ticket) string) ([]repository.TicketCounts, error) {
	buckets := map[string]int64{}
	for _, ticket := range f.tickets {
		buckets[key(ticket)]++
	}
	result := make([]repository.TicketCounts, 0, len(buckets))
	for k, v := range buckets {
		result = append(result, repository.TicketCounts{Key: k, Count: v})
	}
	return result, nil
}

func (f *fakeTicketRepo) CountAssignedTo(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, ticket := range f.tickets {
		if ticket.AssignedToID != nil && *ticket.AssignedToID == userID &&
			ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) SLAOutcomes(_ context.Context) (repository.SLAOutcome, error) {
	var outcome repository.SLAOutcome
	for _, ticket := range f.tickets {
		if ticket.ResolvedAt == nil {
			continue
		}
		if ticket.ResolvedAt.After(ticket.SLADeadline) {
			outcome.Breached++
		} else {
			outcome.Met++
		}
	}
	return outcome, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	seq      int
	// lastIncludeInternal records the visibility flag of the last list call.
	lastIncludeInternal bool
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	f.seq++
	comment.ID = fmt.Sprintf("comment-%d", f.seq)
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	f.lastIncludeInternal = includeInternal
	var result []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

type fakeActivityRepo struct {
	entries []domain.ActivityLog
	seq     int
	failure error
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLog) error {
	if f.failure != nil {
		return f.failure
	}
	f.seq++
	entry.ID = fmt.Sprintf("activity-%d", f.seq)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) CreateBatch(ctx context.Context, entries []domain.ActivityLog) error {
	for i := range entries {
		if err := f.Create(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeActivityRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.ActivityLog, error) {
	var result []domain.ActivityLog
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeActivityRepo) forTicket(ticketID string) []domain.ActivityLog {
	entries, _ := f.ListByTicket(context.Background(), ticketID)
	return entries
}

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

type fakeNotificationRepo struct {
	notifications []domain.Notification
	seq           int
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	f.seq++
	notification.ID = fmt.Sprintf("notification-%d", f.seq)
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	var result []domain.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID != userID {
			continue
		}
		result = append(result, f.notifications[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID string, ids []string) (int64, error) {
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var count int64
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.UserID == userID && wanted[n.ID] && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) forUser(userID string) []domain.Notification {
	var result []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}
