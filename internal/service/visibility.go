package service

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Assignment filter sentinels accepted from the query string. Anything else
// is treated as a technician's user id.
const (
	FilterAll        = "all"
	FilterMe         = "me"
	FilterAssigned   = "assigned"
	FilterUnassigned = "unassigned"
)

// TicketListRequest carries the caller-supplied list filters before role
// enforcement.
type TicketListRequest struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	// Assigned is "", "all", "assigned", "unassigned", or a technician id.
	Assigned string
	// CreatedBy is "", "all", "me", or a user id.
	CreatedBy string
	Search    string
	Limit     int
	Offset    int
}

// BuildTicketScope turns the caller's requested filters into the effective
// query predicate for their role. This is the only place visibility rules
// live; handlers and repositories never re-derive them.
//
// USER callers are always pinned to their own tickets no matter what they
// request. TECHNICIAN callers see their queue, the unclaimed pool, and
// tickets they filed; a request for another technician's assignments is
// narrowed rather than honored. ADMIN filters pass through as given.
func BuildTicketScope(role domain.Role, callerID string, req TicketListRequest) repository.TicketFilter {
	filter := repository.TicketFilter{
		Statuses:   req.Statuses,
		Priorities: req.Priorities,
		Categories: req.Categories,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.Search != "" {
		search := req.Search
		filter.Search = &search
	}

	applyCreatedBy(&filter, role, callerID, req.CreatedBy)
	applyAssigned(&filter, role, callerID, req.Assigned)

	switch role {
	case domain.RoleUser:
		// Forced ownership predicate. Any creator filter the caller supplied
		// is overwritten; assignment filters may remain since they can only
		// narrow the caller's own tickets further.
		caller := callerID
		filter.CreatedByID = &caller
		filter.QueueScopeID = nil
		filter.OwnScopeID = nil
	case domain.RoleTechnician:
		if filter.CreatedByID == nil && filter.AssignedToID == nil &&
			!filter.Unassigned && !filter.AssignedAny && filter.OwnScopeID == nil {
			caller := callerID
			filter.QueueScopeID = &caller
		}
	case domain.RoleAdmin:
		// No implicit restriction.
	}

	return filter
}

func applyCreatedBy(filter *repository.TicketFilter, role domain.Role, callerID, createdBy string) {
	switch createdBy {
	case "", FilterAll:
		return
	case FilterMe:
		caller := callerID
		filter.CreatedByID = &caller
	default:
		if role == domain.RoleAdmin || createdBy == callerID {
			id := createdBy
			filter.CreatedByID = &id
			return
		}
		// Non-admins asking for someone else's tickets get their own instead.
		caller := callerID
		filter.CreatedByID = &caller
	}
}

func applyAssigned(filter *repository.TicketFilter, role domain.Role, callerID, assigned string) {
	switch assigned {
	case "", FilterAll:
		return
	case FilterAssigned:
		filter.AssignedAny = true
	case FilterUnassigned:
		filter.Unassigned = true
	case FilterMe:
		caller := callerID
		filter.AssignedToID = &caller
	default:
		if role == domain.RoleTechnician && assigned != callerID {
			// The explicit request for another technician's queue is not
			// honored; the technician is narrowed to tickets assigned to or
			// created by themselves.
			caller := callerID
			filter.OwnScopeID = &caller
			return
		}
		id := assigned
		filter.AssignedToID = &id
	}
}
