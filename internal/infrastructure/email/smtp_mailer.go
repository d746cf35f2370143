package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// Config captures the SMTP delivery settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	ClientURL string
}

// SMTPMailer delivers transactional mail over plain SMTP with AUTH.
type SMTPMailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	log  zerolog.Logger
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, log: log}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, kind ports.MailKind, payload ports.MailPayload) error {
	subject, body, err := render(m.cfg.ClientURL, kind, payload)
	if err != nil {
		return err
	}

	msg := buildMessage(m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.From, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		metrics.EmailsSentTotal.WithLabelValues(string(kind), "error").Inc()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			metrics.EmailsSentTotal.WithLabelValues(string(kind), "error").Inc()
			m.log.Error().Err(err).Str("kind", string(kind)).Msg("mail delivery failed")
			return fmt.Errorf("send %s mail: %w", kind, err)
		}
	}

	metrics.EmailsSentTotal.WithLabelValues(string(kind), "ok").Inc()
	m.log.Info().Str("kind", string(kind)).Msg("mail delivered")
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
