package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Type          domain.TicketType     `json:"type"`
	Location      *string               `json:"location"`
	Device        *string               `json:"device"`
	OS            *string               `json:"os"`
	IsOperational *bool                 `json:"is_operational"`
	Attachments   []AttachmentRequest   `json:"attachments"`
}

// AttachmentRequest describes a pre-uploaded file reference.
type AttachmentRequest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// UpdateTicketRequest is a partial mutation. Absent fields are untouched.
// The assignee uses a dedicated presence flag so "unassign" and "no change"
// stay distinguishable in JSON.
type UpdateTicketRequest struct {
	Title            *string                `json:"title"`
	Description      *string                `json:"description"`
	Status           *domain.TicketStatus   `json:"status"`
	Priority         *domain.TicketPriority `json:"priority"`
	Category         *domain.TicketCategory `json:"category"`
	SetAssignee      bool                   `json:"set_assignee"`
	AssigneeID       *string                `json:"assignee_id"`
	Solution         *string                `json:"solution"`
	RootCause        *string                `json:"root_cause"`
	TimeSpentMinutes *int                   `json:"time_spent_minutes"`
	RequiresFollowup *bool                  `json:"requires_followup"`
	Rating           *int                   `json:"rating"`
	Feedback         *string                `json:"feedback"`
}

// AssignTicketRequest payload. A null assignee unassigns.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// BulkDeleteRequest payload.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse reports how many tickets were removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber int64                 `json:"ticket_number"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	Type         domain.TicketType     `json:"type"`
	CreatedByID  string                `json:"created_by_id"`
	AssignedToID *string               `json:"assigned_to_id"`
	SLADeadline  time.Time             `json:"sla_deadline"`
	SLAStatus    domain.SLAStatus      `json:"sla_status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID               string                `json:"id"`
	TicketNumber     int64                 `json:"ticket_number"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	Category         domain.TicketCategory `json:"category"`
	Type             domain.TicketType     `json:"type"`
	CreatedByID      string                `json:"created_by_id"`
	AssignedToID     *string               `json:"assigned_to_id"`
	Location         *string               `json:"location"`
	Device           *string               `json:"device"`
	OS               *string               `json:"os"`
	IsOperational    *bool                 `json:"is_operational"`
	Solution         *string               `json:"solution"`
	RootCause        *string               `json:"root_cause"`
	TimeSpentMinutes *int                  `json:"time_spent_minutes"`
	RequiresFollowup *bool                 `json:"requires_followup"`
	Rating           *int                  `json:"rating"`
	Feedback         *string               `json:"feedback"`
	SLADeadline      time.Time             `json:"sla_deadline"`
	SLAStatus        domain.SLAStatus      `json:"sla_status"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ResolvedAt       *time.Time            `json:"resolved_at"`
	ClosedAt         *time.Time            `json:"closed_at"`
	Attachments      []AttachmentResponse  `json:"attachments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityResponse represents an audit trail entry.
type ActivityResponse struct {
	ID        string                `json:"id"`
	TicketID  string                `json:"ticket_id"`
	UserID    string                `json:"user_id"`
	Action    domain.ActivityAction `json:"action"`
	Details   string                `json:"details"`
	CreatedAt time.Time             `json:"created_at"`
}

// DashboardResponse aggregates ticket counters for staff.
type DashboardResponse struct {
	ByStatus     map[string]int64 `json:"by_status"`
	ByPriority   map[string]int64 `json:"by_priority"`
	ByCategory   map[string]int64 `json:"by_category"`
	Open         int64            `json:"open"`
	SLAMet       int64            `json:"sla_met"`
	SLABreached  int64            `json:"sla_breached"`
	AssignedToMe int64            `json:"assigned_to_me"`
}
