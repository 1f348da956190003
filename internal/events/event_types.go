package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketResolved        EventType = "ticket_resolved"
	EventTicketClosed          EventType = "ticket_closed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventCommentAdded          EventType = "new_comment"
)

// Event represents a domain event emitted by services after the triggering
// mutation has committed. Handler failures never surface to the caller.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber int64                 `json:"ticket_number"`
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedByID  string                `json:"created_by_id"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	TicketNumber int64               `json:"ticket_number"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	CreatedByID  string              `json:"created_by_id"`
	AssignedToID *string             `json:"assigned_to_id,omitempty"`
	Solution     *string             `json:"solution,omitempty"`
}

// AssignedPayload payload.
type AssignedPayload struct {
	TicketNumber int64   `json:"ticket_number"`
	AssignedToID *string `json:"assigned_to_id,omitempty"`
	CreatedByID  string  `json:"created_by_id"`
	AssignerID   string  `json:"assigner_id"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	TicketNumber int64                 `json:"ticket_number"`
	OldPriority  domain.TicketPriority `json:"old_priority"`
	NewPriority  domain.TicketPriority `json:"new_priority"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	TicketNumber int64   `json:"ticket_number"`
	CommentID    string  `json:"comment_id"`
	AuthorID     string  `json:"author_id"`
	IsInternal   bool    `json:"is_internal"`
	CreatedByID  string  `json:"created_by_id"`
	AssignedToID *string `json:"assigned_to_id,omitempty"`
}
