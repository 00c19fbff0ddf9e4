package utils

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"weblog/config"
)

// Mailer delivers notification mail on behalf of request handlers.
// Delivery is fire-and-forget from the caller's point of view: a failure
// surfaces only as an unset sent flag, never as a retried operation.
type Mailer interface {
	Send(subject, body, from string, to []string) error
}

// SMTPMailer sends plain text mail through SMTP using configuration values.
type SMTPMailer struct {
	cfg config.AppConfig
}

// NewSMTPMailer builds a Mailer backed by the configured SMTP server.
func NewSMTPMailer(cfg config.AppConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send composes and delivers one message to the given recipients.
func (m *SMTPMailer) Send(subject, body, from string, to []string) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := gomail.NewMessage()
	fromHeader := from
	if m.cfg.SMTPFromName != "" {
		fromHeader = msg.FormatAddress(from, m.cfg.SMTPFromName)
	}
	msg.SetHeader("From", fromHeader)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
	return d.DialAndSend(msg)
}
