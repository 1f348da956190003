package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationService turns domain events into in-app notifications and
// email. It runs strictly after the triggering mutation has committed, and
// every failure here is logged and swallowed: a dead mail relay must never
// fail a ticket update.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	tickets       repository.TicketRepository
	users         repository.UserRepository
	mail          mailer.Mailer
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the service.
type NotificationDependencies struct {
	Dispatcher       events.Dispatcher
	NotificationRepo repository.NotificationRepository
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	Mailer           mailer.Mailer
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:    deps.Dispatcher,
		notifications: deps.NotificationRepo,
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		mail:          deps.Mailer,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events. Priority changes are deliberately
// not subscribed: they are audited but never notified.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

// ListForUser returns the caller's most recent notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	notifications, err := n.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the caller has.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks the given notifications read. Ids belonging to another user
// are silently skipped; the returned count is what was actually updated.
func (n *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("notification ids required", nil)
	}
	count, err := n.notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := n.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	ticket, creator := n.loadTicketAndUser(ctx, event.TicketID, payload.CreatedByID)
	if ticket == nil || creator == nil {
		return nil
	}

	n.createInApp(ctx, creator.ID, domain.NotificationSuccess,
		"Ticket created",
		fmt.Sprintf("Your ticket #%d has been created", ticket.TicketNumber),
		ticketLink(ticket))

	msg := mailer.TicketCreated(ticket)
	msg.To = creator.Email
	n.send(msg, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	ticket, creator := n.loadTicketAndUser(ctx, event.TicketID, payload.CreatedByID)
	if ticket == nil || creator == nil {
		return nil
	}

	var msg mailer.Message
	inAppType := domain.NotificationInfo
	switch event.Type {
	case events.EventTicketResolved:
		solution := ""
		if payload.Solution != nil {
			solution = *payload.Solution
		}
		msg = mailer.TicketResolved(ticket, solution)
		inAppType = domain.NotificationSuccess
	case events.EventTicketClosed:
		msg = mailer.TicketClosed(ticket)
	default:
		msg = mailer.StatusChanged(ticket, payload.OldStatus, payload.NewStatus)
	}

	n.createInApp(ctx, creator.ID, inAppType,
		"Ticket updated",
		fmt.Sprintf("Ticket #%d is now %s", ticket.TicketNumber, payload.NewStatus),
		ticketLink(ticket))

	msg.To = creator.Email
	if payload.AssignedToID != nil {
		if assignee, err := n.users.GetByID(ctx, *payload.AssignedToID); err == nil && assignee.Email != creator.Email {
			msg.CC = []string{assignee.Email}
		}
	}
	n.send(msg, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignedPayload)
	if !ok || payload.AssignedToID == nil {
		return nil
	}
	ticket, assignee := n.loadTicketAndUser(ctx, event.TicketID, *payload.AssignedToID)
	if ticket == nil || assignee == nil {
		return nil
	}

	n.createInApp(ctx, assignee.ID, domain.NotificationInfo,
		"Ticket assigned",
		fmt.Sprintf("Ticket #%d has been assigned to you", ticket.TicketNumber),
		ticketLink(ticket))

	msg := mailer.TicketAssigned(ticket, assignee.Name)
	msg.To = assignee.Email
	if creator, err := n.users.GetByID(ctx, payload.CreatedByID); err == nil && creator.Email != assignee.Email {
		msg.CC = []string{creator.Email}
	}
	n.send(msg, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		n.logger.Warn("notification skipped: ticket lookup failed", zap.Error(err))
		return nil
	}
	author, err := n.users.GetByID(ctx, payload.AuthorID)
	if err != nil {
		return nil
	}

	recipientIDs := []string{payload.CreatedByID}
	if payload.AssignedToID != nil {
		recipientIDs = append(recipientIDs, *payload.AssignedToID)
	}
	seen := map[string]bool{payload.AuthorID: true}
	for _, id := range recipientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		recipient, err := n.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		// Internal notes stay invisible to USER-role recipients, both in-app
		// and by email.
		if payload.IsInternal && !recipient.Role.IsStaff() {
			continue
		}
		n.createInApp(ctx, recipient.ID, domain.NotificationInfo,
			"New comment",
			fmt.Sprintf("%s commented on ticket #%d", author.Name, ticket.TicketNumber),
			ticketLink(ticket))
		msg := mailer.NewComment(ticket, author.Name)
		msg.To = recipient.Email
		n.send(msg, event)
	}
	return nil
}

func (n *NotificationService) loadTicketAndUser(ctx context.Context, ticketID, userID string) (*domain.Ticket, *domain.User) {
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		n.logger.Warn("notification skipped: ticket lookup failed", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, nil
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("notification skipped: user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return ticket, nil
	}
	return ticket, user
}

func (n *NotificationService) createInApp(ctx context.Context, userID string, kind domain.NotificationType, title, message, link string) {
	notification := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Link:    &link,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to store notification", zap.String("user_id", userID), zap.Error(err))
	}
}

func (n *NotificationService) send(msg mailer.Message, event events.Event) {
	if msg.To == "" {
		return
	}
	if err := n.mail.Send(msg); err != nil {
		n.logger.Warn("failed to send email",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func ticketLink(ticket *domain.Ticket) string {
	return fmt.Sprintf("/tickets/%d", ticket.TicketNumber)
}
