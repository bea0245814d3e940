package mail

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dvloznov/backoffice/internal/config"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"
)

// SendTimeout bounds a single send.
const SendTimeout = 20 * time.Second

// Message is an outgoing email. The attachment comes either from a file on
// disk (AttachmentPath) or from memory (AttachmentName and AttachmentData).
type Message struct {
	To             []string
	Subject        string
	Body           string
	AttachmentPath string
	AttachmentName string
	AttachmentData []byte
}

// Sender delivers outgoing mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailgunSender sends through the Mailgun API.
type MailgunSender struct {
	mg   mailgun.Mailgun
	from string
	log  zerolog.Logger
}

// NewMailgunSender creates a sender for the given Mailgun domain.
func NewMailgunSender(domain, apiKey, from string, log zerolog.Logger) *MailgunSender {
	return &MailgunSender{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
		log:  log,
	}
}

// Send implements Sender.
func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("MailgunSender.Send: no recipients")
	}
	m := s.mg.NewMessage(s.from, msg.Subject, msg.Body, msg.To...)
	if msg.AttachmentPath != "" {
		m.AddAttachment(msg.AttachmentPath)
	}
	if len(msg.AttachmentData) > 0 {
		m.AddBufferAttachment(msg.AttachmentName, msg.AttachmentData)
	}

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("MailgunSender.Send: mailgun response %q: %w", resp, err)
	}
	s.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Str("mailgun_id", id).Msg("email sent")
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no mail provider is configured.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	attachment := msg.AttachmentName
	if attachment == "" && msg.AttachmentPath != "" {
		attachment = filepath.Base(msg.AttachmentPath)
	}
	s.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_len", len(msg.Body)).
		Str("attachment", attachment).
		Msg("mail not configured, message logged only")
	return nil
}

// NewSender returns a MailgunSender when Mailgun is configured and a
// LogSender otherwise.
func NewSender(cfg *config.Config, log zerolog.Logger) Sender {
	if cfg.MailConfigured() {
		return NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom, log)
	}
	log.Warn().Msg("MAILGUN_DOMAIN, MAILGUN_API_KEY or MAIL_FROM not set, emails will only be logged")
	return NewLogSender(log)
}

// TrySend sends msg and reports success. Failures are logged.
func TrySend(ctx context.Context, s Sender, msg Message, log zerolog.Logger) bool {
	if err := s.Send(ctx, msg); err != nil {
		log.Error().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Msg("failed to send email")
		return false
	}
	return true
}
