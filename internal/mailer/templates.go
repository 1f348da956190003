package mailer

import (
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Template builders for ticket lifecycle email. Each returns a ready Message
// minus the recipient, which the notification layer fills in.

func TicketCreated(ticket *domain.Ticket) Message {
	return Message{
		Subject: fmt.Sprintf("Ticket #%d created - %s", ticket.TicketNumber, ticket.Title),
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>Your ticket has been created</h2>
			<p>Ticket <strong>#%d</strong>: %s</p>
			<p>Priority: %s. We aim to resolve it by %s.</p>
			<p>You will receive updates as the ticket progresses.</p>
		</body>
		</html>
	`, ticket.TicketNumber, ticket.Title, ticket.Priority, ticket.SLADeadline.Format("Mon, 02 Jan 2006 15:04 MST")),
		TextBody: fmt.Sprintf("Your ticket #%d (%s) has been created with priority %s.\nTarget resolution: %s.\n",
			ticket.TicketNumber, ticket.Title, ticket.Priority, ticket.SLADeadline.Format("Mon, 02 Jan 2006 15:04 MST")),
	}
}

func TicketAssigned(ticket *domain.Ticket, assigneeName string) Message {
	return Message{
		Subject: fmt.Sprintf("Ticket #%d assigned - %s", ticket.TicketNumber, ticket.Title),
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>Ticket assigned</h2>
			<p>Ticket <strong>#%d</strong>: %s has been assigned to %s.</p>
		</body>
		</html>
	`, ticket.TicketNumber, ticket.Title, assigneeName),
		TextBody: fmt.Sprintf("Ticket #%d (%s) has been assigned to %s.\n",
			ticket.TicketNumber, ticket.Title, assigneeName),
	}
}

func StatusChanged(ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus) Message {
	return Message{
		Subject: fmt.Sprintf("Ticket #%d - Status: %s", ticket.TicketNumber, newStatus),
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>Ticket status updated</h2>
			<p>Ticket <strong>#%d</strong>: %s</p>
			<p>Status changed from %s to <strong>%s</strong>.</p>
		</body>
		</html>
	`, ticket.TicketNumber, ticket.Title, oldStatus, newStatus),
		TextBody: fmt.Sprintf("Ticket #%d (%s): status changed from %s to %s.\n",
			ticket.TicketNumber, ticket.Title, oldStatus, newStatus),
	}
}

func TicketResolved(ticket *domain.Ticket, solution string) Message {
	body := fmt.Sprintf("Ticket #%d (%s) has been resolved.", ticket.TicketNumber, ticket.Title)
	if solution != "" {
		body += "\nSolution: " + solution
	}
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>Ticket resolved</h2>
			<p>Ticket <strong>#%d</strong>: %s has been resolved.</p>`, ticket.TicketNumber, ticket.Title)
	if solution != "" {
		html += fmt.Sprintf("\n\t\t\t<p>Solution: %s</p>", solution)
	}
	html += `
		</body>
		</html>
	`
	return Message{
		Subject:  fmt.Sprintf("Ticket #%d resolved - %s", ticket.TicketNumber, ticket.Title),
		HTMLBody: html,
		TextBody: body + "\n",
	}
}

func TicketClosed(ticket *domain.Ticket) Message {
	return Message{
		Subject: fmt.Sprintf("Ticket #%d closed - %s", ticket.TicketNumber, ticket.Title),
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>Ticket closed</h2>
			<p>Ticket <strong>#%d</strong>: %s has been closed.</p>
			<p>If the problem reappears, reply or open a new ticket.</p>
		</body>
		</html>
	`, ticket.TicketNumber, ticket.Title),
		TextBody: fmt.Sprintf("Ticket #%d (%s) has been closed.\n", ticket.TicketNumber, ticket.Title),
	}
}

func NewComment(ticket *domain.Ticket, authorName string) Message {
	return Message{
		Subject: fmt.Sprintf("Ticket #%d - new comment", ticket.TicketNumber),
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>New comment</h2>
			<p>%s commented on ticket <strong>#%d</strong>: %s.</p>
		</body>
		</html>
	`, authorName, ticket.TicketNumber, ticket.Title),
		TextBody: fmt.Sprintf("%s commented on ticket #%d (%s).\n", authorName, ticket.TicketNumber, ticket.Title),
	}
}

func PasswordReset(resetURL string, ttlMinutes int) Message {
	return Message{
		Subject: "Reset your password",
		HTMLBody: fmt.Sprintf(`
		<html>
		<body>
			<h2>Password reset request</h2>
			<p>We received a request to reset your password. Click the link below to reset it:</p>
			<p><a href="%s">Reset password</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>This link will expire in %d minutes.</p>
			<p>If you didn't request a password reset, please ignore this email.</p>
		</body>
		</html>
	`, resetURL, resetURL, ttlMinutes),
		TextBody: fmt.Sprintf("Reset your password by visiting:\n%s\n\nThis link expires in %d minutes.\n", resetURL, ttlMinutes),
	}
}
