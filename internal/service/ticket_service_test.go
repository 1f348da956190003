package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	service       *TicketService
	tickets       *fakeTicketRepo
	comments      *fakeCommentRepo
	activity      *fakeActivityRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	published     *[]events.Event

	user     *domain.User
	tech     *domain.User
	tech2    *domain.User
	admin    *domain.User
	inactive *domain.User
}

func newTicketFixture() *ticketFixture {
	fx := &ticketFixture{
		tickets:       newFakeTicketRepo(),
		comments:      &fakeCommentRepo{},
		activity:      &fakeActivityRepo{},
		notifications: &fakeNotificationRepo{},
		user:          &domain.User{ID: "u1", Email: "u1@example.com", Name: "Pat User", Role: domain.RoleUser, Active: true},
		tech:          &domain.User{ID: "tech1", Email: "tech1@example.com", Name: "Sam Tech", Role: domain.RoleTechnician, Active: true},
		tech2:         &domain.User{ID: "tech2", Email: "tech2@example.com", Name: "Robin Tech", Role: domain.RoleTechnician, Active: true},
		admin:         &domain.User{ID: "admin1", Email: "admin@example.com", Name: "Alex Admin", Role: domain.RoleAdmin, Active: true},
		inactive:      &domain.User{ID: "tech3", Email: "tech3@example.com", Name: "Gone Tech", Role: domain.RoleTechnician, Active: false},
	}
	fx.users = newFakeUserRepo(fx.user, fx.tech, fx.tech2, fx.admin, fx.inactive)

	dispatcher := events.NewInMemoryDispatcher()
	published := []events.Event{}
	fx.published = &published
	record := func(_ context.Context, event events.Event) error {
		*fx.published = append(*fx.published, event)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketResolved,
		events.EventTicketClosed,
		events.EventTicketAssigned,
		events.EventTicketPriorityChanged,
		events.EventCommentAdded,
	} {
		dispatcher.Subscribe(eventType, record)
	}

	fx.service = NewTicketService(TicketDependencies{
		TicketRepo:       fx.tickets,
		CommentRepo:      fx.comments,
		ActivityRepo:     fx.activity,
		UserRepo:         fx.users,
		NotificationRepo: fx.notifications,
		Dispatcher:       dispatcher,
	})
	return fx
}

func (fx *ticketFixture) createTicket(t *testing.T, creatorID string) *domain.Ticket {
	t.Helper()
	ticket, err := fx.service.CreateTicket(context.Background(), creatorID, TicketCreateInput{
		Title:       "Laptop will not boot",
		Description: "Screen stays black after pressing the power button.",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityHigh,
		Type:        domain.TicketTypeIncident,
	})
	require.NoError(t, err)
	*fx.published = nil
	return ticket
}

func (fx *ticketFixture) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(*fx.published))
	for _, event := range *fx.published {
		types = append(types, event.Type)
	}
	return types
}

func TestCreateTicket(t *testing.T) {
	t.Run("persists ticket with side effects", func(t *testing.T) {
		fx := newTicketFixture()
		before := time.Now()

		ticket, err := fx.service.CreateTicket(context.Background(), fx.user.ID, TicketCreateInput{
			Title:       "VPN keeps dropping",
			Description: "Connection resets every few minutes since the update.",
			Category:    domain.TicketCategoryNetwork,
			Priority:    domain.TicketPriorityCritical,
			Type:        domain.TicketTypeIncident,
			Attachments: []AttachmentInput{
				{Name: "log.txt", URL: "https://files.example.com/log.txt", SizeBytes: 2048, MimeType: "text/plain"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Equal(t, fx.user.ID, ticket.CreatedByID)
		assert.Nil(t, ticket.AssignedToID)
		assert.NotZero(t, ticket.TicketNumber)

		// Critical priority gives a 4 hour window, anchored at creation.
		slack := ticket.SLADeadline.Sub(before)
		assert.InDelta(t, (4 * time.Hour).Seconds(), slack.Seconds(), 5)

		attachments, _ := fx.tickets.ListAttachments(context.Background(), ticket.ID)
		require.Len(t, attachments, 1)
		assert.Equal(t, "log.txt", attachments[0].Filename)

		require.Len(t, fx.tickets.createdLogs, 1)
		assert.Equal(t, domain.ActivityCreated, fx.tickets.createdLogs[0].Action)

		require.Len(t, *fx.published, 1)
		assert.Equal(t, events.EventTicketCreated, (*fx.published)[0].Type)
	})

	t.Run("reports every violation at once", func(t *testing.T) {
		fx := newTicketFixture()

		_, err := fx.service.CreateTicket(context.Background(), fx.user.ID, TicketCreateInput{
			Title:       "bad",
			Description: "short",
			Category:    domain.TicketCategory("GARDENING"),
			Priority:    domain.TicketPriority("URGENT-ISH"),
			Type:        domain.TicketType("WISH"),
		})
		require.Error(t, err)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		for _, field := range []string{"title", "description", "category", "priority", "type"} {
			assert.Contains(t, domainErr.Details, field)
		}
		assert.Empty(t, fx.tickets.tickets)
		assert.Empty(t, *fx.published)
	})

	t.Run("rejects oversized attachments", func(t *testing.T) {
		fx := newTicketFixture()

		_, err := fx.service.CreateTicket(context.Background(), fx.user.ID, TicketCreateInput{
			Title:       "Monitor flickers",
			Description: "The external monitor flickers on the docking station.",
			Category:    domain.TicketCategoryHardware,
			Priority:    domain.TicketPriorityLow,
			Type:        domain.TicketTypeIncident,
			Attachments: []AttachmentInput{
				{Name: "video.mov", URL: "https://files.example.com/video.mov", SizeBytes: 9 * 1024 * 1024},
			},
		})
		require.Error(t, err)
		assert.Contains(t, apperrors.ToDomainError(err).Details, "attachments[0]")
	})

	t.Run("strips markup from text fields", func(t *testing.T) {
		fx := newTicketFixture()

		ticket, err := fx.service.CreateTicket(context.Background(), fx.user.ID, TicketCreateInput{
			Title:       `<script>alert(1)</script>Printer offline`,
			Description: "The <b>third floor</b> printer shows offline for everyone.",
			Category:    domain.TicketCategoryHardware,
			Priority:    domain.TicketPriorityMedium,
			Type:        domain.TicketTypeIncident,
		})
		require.NoError(t, err)
		assert.Equal(t, "Printer offline", ticket.Title)
		assert.Equal(t, "The third floor printer shows offline for everyone.", ticket.Description)
	})
}

func TestUpdateTicketStatus(t *testing.T) {
	t.Run("status change logs and publishes", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		status := domain.TicketStatusInReview
		updated, err := fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInReview, updated.Status)

		entries := fx.activity.forTicket(ticket.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActivityStatusChanged, entries[0].Action)
		assert.Equal(t, "OPEN → IN_REVIEW", entries[0].Details)

		assert.Equal(t, []events.EventType{events.EventTicketStatusChanged}, fx.eventTypes())
	})

	t.Run("same status is a no-op for side effects", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		status := domain.TicketStatusOpen
		_, err := fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Status: &status})
		require.NoError(t, err)

		assert.Empty(t, fx.activity.forTicket(ticket.ID))
		assert.Empty(t, *fx.published)
	})

	t.Run("resolve stamps resolvedAt and reopen keeps it", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		resolved := domain.TicketStatusResolved
		updated, err := fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Status: &resolved})
		require.NoError(t, err)
		require.NotNil(t, updated.ResolvedAt)
		firstResolved := *updated.ResolvedAt
		assert.Equal(t, []events.EventType{events.EventTicketResolved}, fx.eventTypes())

		*fx.published = nil
		reopened := domain.TicketStatusReopened
		updated, err = fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Status: &reopened})
		require.NoError(t, err)
		require.NotNil(t, updated.ResolvedAt)
		assert.Equal(t, firstResolved, *updated.ResolvedAt)

		*fx.published = nil
		updated, err = fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Status: &resolved})
		require.NoError(t, err)
		require.NotNil(t, updated.ResolvedAt)
		assert.False(t, updated.ResolvedAt.Before(firstResolved))
	})

	t.Run("close stamps closedAt once per entry", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		closed := domain.TicketStatusClosed
		updated, err := fx.service.UpdateTicket(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{Status: &closed})
		require.NoError(t, err)
		require.NotNil(t, updated.ClosedAt)
		assert.Equal(t, []events.EventType{events.EventTicketClosed}, fx.eventTypes())
	})

	t.Run("owner may edit, stranger may not", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		title := "Laptop will not boot at all"
		_, err := fx.service.UpdateTicket(context.Background(), fx.user, ticket.ID, TicketUpdateInput{Title: &title})
		assert.NoError(t, err)

		stranger := &domain.User{ID: "u2", Role: domain.RoleUser, Active: true}
		_, err = fx.service.UpdateTicket(context.Background(), stranger, ticket.ID, TicketUpdateInput{Title: &title})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})

	t.Run("priority change is audited but keeps the original deadline", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)
		originalDeadline := ticket.SLADeadline

		priority := domain.TicketPriorityCritical
		updated, err := fx.service.UpdateTicket(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{Priority: &priority})
		require.NoError(t, err)
		assert.Equal(t, originalDeadline, updated.SLADeadline)

		entries := fx.activity.forTicket(ticket.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActivityPriorityChanged, entries[0].Action)
		assert.Equal(t, "HIGH → CRITICAL", entries[0].Details)
		assert.Equal(t, []events.EventType{events.EventTicketPriorityChanged}, fx.eventTypes())
	})

	t.Run("invalid rating is rejected", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		rating := 6
		_, err := fx.service.UpdateTicket(context.Background(), fx.user, ticket.ID, TicketUpdateInput{Rating: &rating})
		require.Error(t, err)
		assert.Contains(t, apperrors.ToDomainError(err).Details, "rating")
	})
}

func TestAssignTicket(t *testing.T) {
	t.Run("assignment sets assignee, status, log, and event", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		updated, err := fx.service.AssignTicket(context.Background(), fx.admin, ticket.ID, &fx.tech.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.AssignedToID)
		assert.Equal(t, fx.tech.ID, *updated.AssignedToID)
		assert.Equal(t, domain.TicketStatusAssigned, updated.Status)

		actions := map[domain.ActivityAction]bool{}
		for _, entry := range fx.activity.forTicket(ticket.ID) {
			actions[entry.Action] = true
		}
		assert.True(t, actions[domain.ActivityAssigned])
		assert.True(t, actions[domain.ActivityStatusChanged])
		assert.Contains(t, fx.eventTypes(), events.EventTicketAssigned)
	})

	t.Run("regular users cannot assign", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		_, err := fx.service.AssignTicket(context.Background(), fx.user, ticket.ID, &fx.tech.ID)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})

	t.Run("deactivated assignee is rejected", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		_, err := fx.service.AssignTicket(context.Background(), fx.admin, ticket.ID, &fx.inactive.ID)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})
}

func TestBulkDeleteTickets(t *testing.T) {
	t.Run("admin removes known ids and reports the count", func(t *testing.T) {
		fx := newTicketFixture()
		t1 := fx.createTicket(t, fx.user.ID)
		t2 := fx.createTicket(t, fx.user.ID)

		count, err := fx.service.BulkDeleteTickets(context.Background(), fx.admin,
			[]string{t1.ID, t2.ID, "ticket-does-not-exist"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.Empty(t, fx.tickets.tickets)
	})

	t.Run("technician is denied", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		_, err := fx.service.BulkDeleteTickets(context.Background(), fx.tech, []string{ticket.ID})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
		assert.Len(t, fx.tickets.tickets, 1)
	})

	t.Run("empty id list is invalid", func(t *testing.T) {
		fx := newTicketFixture()
		_, err := fx.service.BulkDeleteTickets(context.Background(), fx.admin, nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})
}

func TestComments(t *testing.T) {
	t.Run("comment is persisted with log and event", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		comment, err := fx.service.AddComment(context.Background(), fx.user, ticket.ID, "Any update on this?", false)
		require.NoError(t, err)
		assert.False(t, comment.IsInternal)
		require.Len(t, fx.comments.comments, 1)

		entries := fx.activity.forTicket(ticket.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActivityCommented, entries[0].Action)
		assert.Equal(t, []events.EventType{events.EventCommentAdded}, fx.eventTypes())
	})

	t.Run("internal note from a regular user is rejected before persistence", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		_, err := fx.service.AddComment(context.Background(), fx.user, ticket.ID, "secret note", true)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
		assert.Empty(t, fx.comments.comments)
		assert.Empty(t, fx.activity.forTicket(ticket.ID))
		assert.Empty(t, *fx.published)
	})

	t.Run("staff may attach internal notes", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		comment, err := fx.service.AddComment(context.Background(), fx.tech, ticket.ID, "Swap the motherboard.", true)
		require.NoError(t, err)
		assert.True(t, comment.IsInternal)
	})

	t.Run("listing hides internal notes from regular users", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		_, err := fx.service.AddComment(context.Background(), fx.user, ticket.ID, "It happened again.", false)
		require.NoError(t, err)
		_, err = fx.service.AddComment(context.Background(), fx.tech, ticket.ID, "Likely a PSU fault.", true)
		require.NoError(t, err)

		visible, err := fx.service.ListComments(context.Background(), fx.user, ticket.ID)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.False(t, fx.comments.lastIncludeInternal)

		all, err := fx.service.ListComments(context.Background(), fx.tech, ticket.ID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.True(t, fx.comments.lastIncludeInternal)
	})

	t.Run("strangers cannot comment", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		stranger := &domain.User{ID: "u2", Role: domain.RoleUser, Active: true}
		_, err := fx.service.AddComment(context.Background(), stranger, ticket.ID, "me too", false)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})
}

func TestGetTicketVisibility(t *testing.T) {
	fx := newTicketFixture()
	ticket := fx.createTicket(t, fx.user.ID)

	_, _, err := fx.service.GetTicket(context.Background(), fx.user, ticket.ID)
	assert.NoError(t, err)

	_, _, err = fx.service.GetTicket(context.Background(), fx.tech, ticket.ID)
	assert.NoError(t, err)

	stranger := &domain.User{ID: "u2", Role: domain.RoleUser, Active: true}
	_, _, err = fx.service.GetTicket(context.Background(), stranger, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, _, err = fx.service.GetTicket(context.Background(), fx.admin, "ticket-unknown")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestActivityStoreFailure(t *testing.T) {
	t.Run("status update surfaces the error and publishes nothing", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		fx.activity.failure = errors.New("activity store down")
		status := domain.TicketStatusInReview
		_, err := fx.service.UpdateTicket(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{Status: &status})
		require.Error(t, err)
		assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
		assert.Empty(t, *fx.published)
	})

	t.Run("comment surfaces the error and publishes nothing", func(t *testing.T) {
		fx := newTicketFixture()
		ticket := fx.createTicket(t, fx.user.ID)

		fx.activity.failure = errors.New("activity store down")
		_, err := fx.service.AddComment(context.Background(), fx.user, ticket.ID, "any update on this?", false)
		require.Error(t, err)
		assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
		assert.Empty(t, *fx.published)
	})
}
