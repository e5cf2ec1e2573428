// Package smtp delivers outbound application mail. Sender speaks plain
// SMTP with AUTH when credentials are configured; LogSender is the
// development stand-in that writes the message to the log instead.
package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/brunovale/catalog-backend/internal/config"
)

// Sender sends mail through a configured SMTP relay.
type Sender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSender creates a sender from mail configuration.
func NewSender(cfg config.MailConfig) *Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &Sender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}
}

// Send delivers a plain-text message to a single recipient.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	return nil
}

// LogSender logs messages instead of delivering them. Used when no SMTP
// relay is configured, so local setups can read recovery links off the log.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("sender", "log")}
}

// Send writes the message to the log.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "outbound mail (not delivered)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
