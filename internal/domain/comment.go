package domain

import "time"

// Comment is a message on a ticket thread. Comments are immutable once created.
// Internal comments are visible to staff only.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
