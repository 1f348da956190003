package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestBuildTicketScopeUser(t *testing.T) {
	t.Run("default pins to own tickets", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleUser, "u1", TicketListRequest{})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "u1", *filter.CreatedByID)
		assert.Nil(t, filter.QueueScopeID)
		assert.Nil(t, filter.OwnScopeID)
	})

	t.Run("creator filter for someone else is overwritten", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleUser, "u1", TicketListRequest{CreatedBy: "u2"})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "u1", *filter.CreatedByID)
	})

	t.Run("created_by=all still pins to caller", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleUser, "u1", TicketListRequest{CreatedBy: FilterAll})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "u1", *filter.CreatedByID)
	})

	t.Run("status and search filters survive within the forced scope", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleUser, "u1", TicketListRequest{
			Statuses: []domain.TicketStatus{domain.TicketStatusOpen},
			Search:   "printer",
		})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "u1", *filter.CreatedByID)
		assert.Equal(t, []domain.TicketStatus{domain.TicketStatusOpen}, filter.Statuses)
		require.NotNil(t, filter.Search)
		assert.Equal(t, "printer", *filter.Search)
	})
}

func TestBuildTicketScopeTechnician(t *testing.T) {
	t.Run("default expands to queue scope", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{})
		require.NotNil(t, filter.QueueScopeID)
		assert.Equal(t, "tech1", *filter.QueueScopeID)
		assert.Nil(t, filter.CreatedByID)
		assert.Nil(t, filter.AssignedToID)
	})

	t.Run("assigned=me targets own queue only", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{Assigned: FilterMe})
		require.NotNil(t, filter.AssignedToID)
		assert.Equal(t, "tech1", *filter.AssignedToID)
		assert.Nil(t, filter.QueueScopeID)
	})

	t.Run("assigned=unassigned selects the unclaimed pool", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{Assigned: FilterUnassigned})
		assert.True(t, filter.Unassigned)
		assert.Nil(t, filter.QueueScopeID)
	})

	t.Run("another technician's queue is narrowed to own scope", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{Assigned: "tech2"})
		require.NotNil(t, filter.OwnScopeID)
		assert.Equal(t, "tech1", *filter.OwnScopeID)
		assert.Nil(t, filter.AssignedToID)
		assert.Nil(t, filter.QueueScopeID)
	})

	t.Run("own id as explicit assignee is honored", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{Assigned: "tech1"})
		require.NotNil(t, filter.AssignedToID)
		assert.Equal(t, "tech1", *filter.AssignedToID)
		assert.Nil(t, filter.OwnScopeID)
	})

	t.Run("created_by for another user is replaced with caller", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleTechnician, "tech1", TicketListRequest{CreatedBy: "u9"})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "tech1", *filter.CreatedByID)
	})
}

func TestBuildTicketScopeAdmin(t *testing.T) {
	t.Run("no implicit scope", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleAdmin, "admin1", TicketListRequest{})
		assert.Nil(t, filter.CreatedByID)
		assert.Nil(t, filter.AssignedToID)
		assert.Nil(t, filter.QueueScopeID)
		assert.Nil(t, filter.OwnScopeID)
	})

	t.Run("arbitrary creator filter passes through", func(t *testing.T) {
		filter := BuildTicketScope(domain.RoleAdmin, "admin1", TicketListRequest{CreatedBy: "u2", Assigned: "tech2"})
		require.NotNil(t, filter.CreatedByID)
		assert.Equal(t, "u2", *filter.CreatedByID)
		require.NotNil(t, filter.AssignedToID)
		assert.Equal(t, "tech2", *filter.AssignedToID)
	})
}
