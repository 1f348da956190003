package domain

import "time"

// slaHours maps priority to the number of hours allowed before breach.
var slaHours = map[TicketPriority]int{
	TicketPriorityCritical: 4,
	TicketPriorityHigh:     8,
	TicketPriorityMedium:   24,
	TicketPriorityLow:      48,
}

// slaWarningWindow is how close to the deadline a ticket counts as at risk.
const slaWarningWindow = 4 * time.Hour

// SLADeadlineFor computes the deadline for a ticket created at createdAt.
// The deadline is fixed at creation and never recomputed.
func SLADeadlineFor(priority TicketPriority, createdAt time.Time) time.Time {
	hours, ok := slaHours[priority]
	if !ok {
		hours = slaHours[TicketPriorityMedium]
	}
	return createdAt.Add(time.Duration(hours) * time.Hour)
}

// SLAStatus is the derived, never-persisted breach indicator.
type SLAStatus string

const (
	SLAOk       SLAStatus = "ok"
	SLAWarning  SLAStatus = "warning"
	SLACritical SLAStatus = "critical"
)

// DeriveSLAStatus recomputes the SLA indicator at read time. A resolved
// ticket is always "ok" regardless of the clock.
func DeriveSLAStatus(deadline time.Time, resolvedAt *time.Time, now time.Time) SLAStatus {
	if resolvedAt != nil {
		return SLAOk
	}
	if now.After(deadline) {
		return SLACritical
	}
	if deadline.Sub(now) < slaWarningWindow {
		return SLAWarning
	}
	return SLAOk
}
