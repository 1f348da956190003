package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	titleMinLen       = 5
	titleMaxLen       = 200
	descriptionMinLen = 10
	descriptionMaxLen = 5000
	optionalFieldMax  = 100
	filenameMaxLen    = 255
	maxAttachments    = 5
	maxAttachmentSize = 8 * 1024 * 1024
)

// TicketService coordinates the ticket lifecycle: creation, mutation,
// comments, and bulk removal.
type TicketService struct {
	tickets       repository.TicketRepository
	comments      repository.CommentRepository
	activity      repository.ActivityRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	CommentRepo      repository.CommentRepository
	ActivityRepo     repository.ActivityRepository
	UserRepo         repository.UserRepository
	NotificationRepo repository.NotificationRepository
	Dispatcher       events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		comments:      deps.CommentRepo,
		activity:      deps.ActivityRepo,
		users:         deps.UserRepo,
		notifications: deps.NotificationRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// AttachmentInput describes a pre-uploaded file reference.
type AttachmentInput struct {
	Name      string
	URL       string
	SizeBytes int64
	MimeType  string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title         string
	Description   string
	Category      domain.TicketCategory
	Priority      domain.TicketPriority
	Type          domain.TicketType
	Location      *string
	Device        *string
	OS            *string
	IsOperational *bool
	Attachments   []AttachmentInput
}

// TicketUpdateInput describes a partial ticket mutation. Nil fields are left
// untouched. SetAssignee distinguishes "unassign" from "no change".
type TicketUpdateInput struct {
	Title            *string
	Description      *string
	Status           *domain.TicketStatus
	Priority         *domain.TicketPriority
	Category         *domain.TicketCategory
	SetAssignee      bool
	AssigneeID       *string
	Solution         *string
	RootCause        *string
	TimeSpentMinutes *int
	RequiresFollowup *bool
	Rating           *int
	Feedback         *string
}

// CreateTicket validates, sanitizes, and persists a new ticket with its
// attachments and initial activity entry in one transaction. The SLA deadline
// is fixed here from the priority and never recomputed.
func (s *TicketService) CreateTicket(ctx context.Context, callerID string, input TicketCreateInput) (*domain.Ticket, error) {
	violations := map[string]any{}

	title := sanitizeText(input.Title, titleMaxLen)
	if len([]rune(title)) < titleMinLen {
		violations["title"] = fmt.Sprintf("must be between %d and %d characters", titleMinLen, titleMaxLen)
	}
	description := sanitizeText(input.Description, descriptionMaxLen)
	if len([]rune(description)) < descriptionMinLen {
		violations["description"] = fmt.Sprintf("must be between %d and %d characters", descriptionMinLen, descriptionMaxLen)
	}
	if !domain.ValidCategory(input.Category) {
		violations["category"] = "unknown category"
	}
	if !domain.ValidPriority(input.Priority) {
		violations["priority"] = "unknown priority"
	}
	if !domain.ValidType(input.Type) {
		violations["type"] = "unknown ticket type"
	}
	if input.Location != nil && len([]rune(*input.Location)) > optionalFieldMax {
		violations["location"] = fmt.Sprintf("must not exceed %d characters", optionalFieldMax)
	}
	if input.Device != nil && len([]rune(*input.Device)) > optionalFieldMax {
		violations["device"] = fmt.Sprintf("must not exceed %d characters", optionalFieldMax)
	}
	if input.OS != nil && len([]rune(*input.OS)) > optionalFieldMax {
		violations["os"] = fmt.Sprintf("must not exceed %d characters", optionalFieldMax)
	}
	if len(input.Attachments) > maxAttachments {
		violations["attachments"] = fmt.Sprintf("at most %d files", maxAttachments)
	}
	for i, att := range input.Attachments {
		key := fmt.Sprintf("attachments[%d]", i)
		switch {
		case att.Name == "" || len([]rune(att.Name)) > filenameMaxLen:
			violations[key] = fmt.Sprintf("filename required, at most %d characters", filenameMaxLen)
		case att.URL == "":
			violations[key] = "url required"
		case att.SizeBytes <= 0 || att.SizeBytes > maxAttachmentSize:
			violations[key] = "file size must be positive and at most 8MB"
		}
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", violations)
	}

	now := time.Now()
	ticket := &domain.Ticket{
		Title:         title,
		Description:   description,
		Status:        domain.TicketStatusOpen,
		Priority:      input.Priority,
		Category:      input.Category,
		Type:          input.Type,
		CreatedByID:   callerID,
		Location:      sanitizeOptional(input.Location, optionalFieldMax),
		Device:        sanitizeOptional(input.Device, optionalFieldMax),
		OS:            sanitizeOptional(input.OS, optionalFieldMax),
		IsOperational: input.IsOperational,
		SLADeadline:   domain.SLADeadlineFor(input.Priority, now),
	}

	attachments := make([]domain.Attachment, 0, len(input.Attachments))
	for _, att := range input.Attachments {
		mimeType := att.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, domain.Attachment{
			Filename:  att.Name,
			URL:       att.URL,
			SizeBytes: att.SizeBytes,
			MimeType:  mimeType,
		})
	}

	log := &domain.ActivityLog{
		UserID:  callerID,
		Action:  domain.ActivityCreated,
		Details: "Ticket created",
	}
	if err := s.tickets.Create(ctx, ticket, attachments, log); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			CreatedByID:  ticket.CreatedByID,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its attachments, enforcing view access.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, []domain.Attachment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !canViewTicket(caller, ticket) {
		return nil, nil, apperrors.NewForbidden()
	}
	attachments, err := s.tickets.ListAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, attachments, nil
}

// ListTickets returns tickets visible to the caller after role scoping.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, req TicketListRequest) ([]domain.Ticket, error) {
	filter := BuildTicketScope(caller.Role, caller.ID, req)
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial mutation with the per-field side effects:
// activity log entries for meaningful changes, resolved/closed timestamps on
// first entry into those statuses, and post-commit notification events.
func (s *TicketService) UpdateTicket(ctx context.Context, caller *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !canEditTicket(caller, ticket) {
		return nil, apperrors.NewForbidden()
	}

	violations := map[string]any{}
	if input.Title != nil {
		title := sanitizeText(*input.Title, titleMaxLen)
		if len([]rune(title)) < titleMinLen {
			violations["title"] = fmt.Sprintf("must be between %d and %d characters", titleMinLen, titleMaxLen)
		}
		input.Title = &title
	}
	if input.Description != nil {
		description := sanitizeText(*input.Description, descriptionMaxLen)
		if len([]rune(description)) < descriptionMinLen {
			violations["description"] = fmt.Sprintf("must be between %d and %d characters", descriptionMinLen, descriptionMaxLen)
		}
		input.Description = &description
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		violations["status"] = "unknown status"
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		violations["priority"] = "unknown priority"
	}
	if input.Category != nil && !domain.ValidCategory(*input.Category) {
		violations["category"] = "unknown category"
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		violations["rating"] = "must be between 1 and 5"
	}
	if input.TimeSpentMinutes != nil && *input.TimeSpentMinutes < 0 {
		violations["timeSpent"] = "must not be negative"
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket update", violations)
	}

	oldStatus := ticket.Status
	oldPriority := ticket.Priority
	oldAssignee := ticket.AssignedToID

	if input.Title != nil {
		ticket.Title = *input.Title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.SetAssignee {
		ticket.AssignedToID = input.AssigneeID
	}
	if input.Solution != nil {
		ticket.Solution = sanitizeOptional(input.Solution, descriptionMaxLen)
	}
	if input.RootCause != nil {
		ticket.RootCause = sanitizeOptional(input.RootCause, descriptionMaxLen)
	}
	if input.TimeSpentMinutes != nil {
		ticket.TimeSpentMinutes = input.TimeSpentMinutes
	}
	if input.RequiresFollowup != nil {
		ticket.RequiresFollowup = input.RequiresFollowup
	}
	if input.Rating != nil {
		ticket.Rating = input.Rating
	}
	if input.Feedback != nil {
		ticket.Feedback = sanitizeOptional(input.Feedback, descriptionMaxLen)
	}

	now := time.Now()
	if input.Status != nil {
		ticket.Status = *input.Status
		// Timestamps are stamped each time the status is newly entered and
		// are never cleared by a later reopen.
		if ticket.Status == domain.TicketStatusResolved && oldStatus != domain.TicketStatusResolved {
			ticket.ResolvedAt = &now
		}
		if ticket.Status == domain.TicketStatusClosed && oldStatus != domain.TicketStatusClosed {
			ticket.ClosedAt = &now
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.recordUpdateActivity(ctx, caller, ticket, oldStatus, oldPriority, oldAssignee); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishUpdateEvents(ctx, caller, ticket, oldStatus, oldPriority, oldAssignee, input)

	return ticket, nil
}

// AssignTicket assigns a ticket to a technician and moves it to ASSIGNED.
func (s *TicketService) AssignTicket(ctx context.Context, caller *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !caller.Role.IsStaff() {
		return nil, apperrors.NewForbidden()
	}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("user", nil)
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active {
			return nil, apperrors.NewValidationError("assignee is deactivated", nil)
		}
	}
	status := domain.TicketStatusAssigned
	return s.UpdateTicket(ctx, caller, ticketID, TicketUpdateInput{
		Status:      &status,
		SetAssignee: true,
		AssigneeID:  assigneeID,
	})
}

// BulkDeleteTickets removes tickets with their comments, activity logs, and
// attachments. Missing ids are tolerated; the returned count is what was
// actually removed.
func (s *TicketService) BulkDeleteTickets(ctx context.Context, caller *domain.User, ids []string) (int64, error) {
	if caller.Role != domain.RoleAdmin {
		return 0, apperrors.NewForbidden()
	}
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("ticket ids required", nil)
	}
	count, err := s.tickets.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// AddComment appends an immutable comment to a ticket thread.
func (s *TicketService) AddComment(ctx context.Context, caller *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !canViewTicket(caller, ticket) {
		return nil, apperrors.NewForbidden()
	}
	// Internal notes are staff-only. The comment is rejected before any
	// persistence happens.
	if isInternal && !caller.Role.IsStaff() {
		return nil, apperrors.NewForbidden()
	}
	content = sanitizeText(content, descriptionMaxLen)
	if content == "" {
		return nil, apperrors.NewValidationError("comment must not be empty", map[string]any{"content": "required"})
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   caller.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	details := "Added a comment"
	if isInternal {
		details = "Added an internal note"
	}
	if err := s.activity.Create(ctx, &domain.ActivityLog{
		TicketID: ticket.ID,
		UserID:   caller.ID,
		Action:   domain.ActivityCommented,
		Details:  details,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		ActorID:  caller.ID,
		Payload: events.CommentAddedPayload{
			TicketNumber: ticket.TicketNumber,
			CommentID:    comment.ID,
			AuthorID:     caller.ID,
			IsInternal:   isInternal,
			CreatedByID:  ticket.CreatedByID,
			AssignedToID: ticket.AssignedToID,
		},
	})
	return comment, nil
}

// ListComments returns a ticket's comments. USER-role callers never see
// internal notes.
func (s *TicketService) ListComments(ctx context.Context, caller *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !canViewTicket(caller, ticket) {
		return nil, apperrors.NewForbidden()
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, caller.Role.IsStaff())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// ListActivity returns a ticket's audit trail, oldest first.
func (s *TicketService) ListActivity(ctx context.Context, caller *domain.User, ticketID string) ([]domain.ActivityLog, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !canViewTicket(caller, ticket) {
		return nil, apperrors.NewForbidden()
	}
	entries, err := s.activity.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func canViewTicket(caller *domain.User, ticket *domain.Ticket) bool {
	if caller.Role.IsStaff() {
		return true
	}
	if ticket.CreatedByID == caller.ID {
		return true
	}
	return ticket.AssignedToID != nil && *ticket.AssignedToID == caller.ID
}

func canEditTicket(caller *domain.User, ticket *domain.Ticket) bool {
	return caller.Role.IsStaff() || ticket.CreatedByID == caller.ID
}

func (s *TicketService) recordUpdateActivity(ctx context.Context, caller *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus, oldPriority domain.TicketPriority, oldAssignee *string) error {
	var entries []domain.ActivityLog

	if ticket.Status != oldStatus {
		entries = append(entries, domain.ActivityLog{
			TicketID: ticket.ID,
			UserID:   caller.ID,
			Action:   domain.ActivityStatusChanged,
			Details:  fmt.Sprintf("%s → %s", oldStatus, ticket.Status),
		})
	}
	if assigneeChanged(oldAssignee, ticket.AssignedToID) {
		details := "unassigned"
		if ticket.AssignedToID != nil {
			if assignee, err := s.users.GetByID(ctx, *ticket.AssignedToID); err == nil {
				details = fmt.Sprintf("Assigned to %s", assignee.Name)
			} else {
				details = "Assigned"
			}
		}
		entries = append(entries, domain.ActivityLog{
			TicketID: ticket.ID,
			UserID:   caller.ID,
			Action:   domain.ActivityAssigned,
			Details:  details,
		})
	}
	if ticket.Priority != oldPriority {
		entries = append(entries, domain.ActivityLog{
			TicketID: ticket.ID,
			UserID:   caller.ID,
			Action:   domain.ActivityPriorityChanged,
			Details:  fmt.Sprintf("%s → %s", oldPriority, ticket.Priority),
		})
	}
	if len(entries) > 0 {
		return s.activity.CreateBatch(ctx, entries)
	}
	return nil
}

func (s *TicketService) publishUpdateEvents(ctx context.Context, caller *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus, oldPriority domain.TicketPriority, oldAssignee *string, input TicketUpdateInput) {
	if ticket.Status != oldStatus {
		eventType := events.EventTicketStatusChanged
		switch ticket.Status {
		case domain.TicketStatusResolved:
			eventType = events.EventTicketResolved
		case domain.TicketStatusClosed:
			eventType = events.EventTicketClosed
		}
		s.publishEvent(ctx, events.Event{
			Type:     eventType,
			TicketID: ticket.ID,
			ActorID:  caller.ID,
			Payload: events.StatusChangedPayload{
				TicketNumber: ticket.TicketNumber,
				OldStatus:    oldStatus,
				NewStatus:    ticket.Status,
				CreatedByID:  ticket.CreatedByID,
				AssignedToID: ticket.AssignedToID,
				Solution:     input.Solution,
			},
		})
	}
	if assigneeChanged(oldAssignee, ticket.AssignedToID) && ticket.AssignedToID != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  caller.ID,
			Payload: events.AssignedPayload{
				TicketNumber: ticket.TicketNumber,
				AssignedToID: ticket.AssignedToID,
				CreatedByID:  ticket.CreatedByID,
				AssignerID:   caller.ID,
			},
		})
	}
	if ticket.Priority != oldPriority {
		// Priority changes are logged but never emailed.
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			ActorID:  caller.ID,
			Payload: events.PriorityChangedPayload{
				TicketNumber: ticket.TicketNumber,
				OldPriority:  oldPriority,
				NewPriority:  ticket.Priority,
			},
		})
	}
}

func assigneeChanged(prev, curr *string) bool {
	if prev == nil && curr == nil {
		return false
	}
	if prev == nil || curr == nil {
		return true
	}
	return *prev != *curr
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
