package domain

import "time"

// ActivityAction identifies what a log entry records.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityStatusChanged   ActivityAction = "status_changed"
	ActivityAssigned        ActivityAction = "assigned"
	ActivityPriorityChanged ActivityAction = "priority_changed"
	ActivityCommented       ActivityAction = "commented"
)

// ActivityLog is an append-only audit trail entry for a ticket.
type ActivityLog struct {
	ID        string
	TicketID  string
	UserID    string
	Action    ActivityAction
	Details   string
	CreatedAt time.Time
}
