package mailer

import (
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Message is one outbound email.
type Message struct {
	To       string
	CC       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends through a configured SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer builds a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers a single message.
func (m *SMTPMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	mail.SetHeader("To", msg.To)
	if len(msg.CC) > 0 {
		mail.SetHeader("Cc", msg.CC...)
	}
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		mail.AddAlternative("text/html", msg.HTMLBody)
	}
	return m.dialer.DialAndSend(mail)
}

// NoopMailer drops mail on the floor. Used when no SMTP host is configured.
type NoopMailer struct{}

// Send discards the message.
func (NoopMailer) Send(Message) error { return nil }
