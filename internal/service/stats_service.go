package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DashboardStats aggregates ticket counts for the staff dashboard.
type DashboardStats struct {
	ByStatus     map[string]int64
	ByPriority   map[string]int64
	ByCategory   map[string]int64
	Open         int64
	SLAMet       int64
	SLABreached  int64
	AssignedToMe int64
}

// StatsService computes dashboard aggregations. Staff only.
type StatsService struct {
	tickets repository.TicketRepository
}

// NewStatsService creates the service.
func NewStatsService(tickets repository.TicketRepository) *StatsService {
	return &StatsService{tickets: tickets}
}

// Dashboard returns the aggregated view for a staff caller. The open counter
// is everything not yet RESOLVED or CLOSED.
func (s *StatsService) Dashboard(ctx context.Context, caller *domain.User) (*DashboardStats, error) {
	if !caller.Role.IsStaff() {
		return nil, apperrors.NewForbidden()
	}

	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.tickets.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byCategory, err := s.tickets.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	outcomes, err := s.tickets.SLAOutcomes(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assigned, err := s.tickets.CountAssignedTo(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		ByStatus:     countsToMap(byStatus),
		ByPriority:   countsToMap(byPriority),
		ByCategory:   countsToMap(byCategory),
		SLAMet:       outcomes.Met,
		SLABreached:  outcomes.Breached,
		AssignedToMe: assigned,
	}
	for key, count := range stats.ByStatus {
		if key != string(domain.TicketStatusResolved) && key != string(domain.TicketStatusClosed) {
			stats.Open += count
		}
	}
	return stats, nil
}

func countsToMap(counts []repository.TicketCounts) map[string]int64 {
	result := make(map[string]int64, len(counts))
	for _, c := range counts {
		result[c.Key] = c.Count
	}
	return result
}
