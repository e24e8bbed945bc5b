package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer delivers notification emails. The services compute recipients;
// delivery stays behind this interface.
type Mailer interface {
	Send(recipients []string, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers one message to all recipients.
func (m *SMTPMailer) Send(recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// LogMailer logs messages instead of sending them. Used in development
// when no SMTP relay is configured.
type LogMailer struct{}

// Send logs the message metadata.
func (m *LogMailer) Send(recipients []string, subject, body string) error {
	log.Printf("mail: would send %q to %d recipient(s)", subject, len(recipients))
	return nil
}
