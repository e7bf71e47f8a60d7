package services

import (
	"log/slog"

	"github.com/arnold/civic-tasks-api/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a plain-text email. Callers treat failures as
// non-fatal.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender returns an SMTP sender, or a logging no-op when no SMTP
// host is configured (dev mode).
func NewEmailSender(cfg *config.Config) EmailSender {
	if cfg.SMTPHost == "" {
		slog.Info("SMTP: no host configured, emails will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	slog.Debug("Email skipped", slog.String("to", to), slog.String("subject", subject))
	return nil
}
