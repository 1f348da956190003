package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInReview    TicketStatus = "IN_REVIEW"
	TicketStatusAssigned    TicketStatus = "ASSIGNED"
	TicketStatusWaitingUser TicketStatus = "WAITING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusReopened    TicketStatus = "REOPENED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketCategory classifies the affected area.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategoryAccess   TicketCategory = "ACCESS"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// TicketType differentiates incidents from requests and planned work.
type TicketType string

const (
	TicketTypeIncident    TicketType = "INCIDENT"
	TicketTypeRequest     TicketType = "REQUEST"
	TicketTypeMaintenance TicketType = "MAINTENANCE"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               string
	TicketNumber     int64
	Title            string
	Description      string
	Status           TicketStatus
	Priority         TicketPriority
	Category         TicketCategory
	Type             TicketType
	CreatedByID      string
	AssignedToID     *string
	Location         *string
	Device           *string
	OS               *string
	IsOperational    *bool
	Solution         *string
	RootCause        *string
	TimeSpentMinutes *int
	RequiresFollowup *bool
	Rating           *int
	Feedback         *string
	SLADeadline      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
	ClosedAt         *time.Time
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInReview, TicketStatusAssigned, TicketStatusWaitingUser,
		TicketStatusResolved, TicketStatusClosed, TicketStatusReopened:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known category value.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case TicketCategoryHardware, TicketCategorySoftware, TicketCategoryNetwork, TicketCategoryAccess, TicketCategoryOther:
		return true
	}
	return false
}

// ValidType reports whether t is a known ticket type.
func ValidType(t TicketType) bool {
	switch t {
	case TicketTypeIncident, TicketTypeRequest, TicketTypeMaintenance:
		return true
	}
	return false
}
