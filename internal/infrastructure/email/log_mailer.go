package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// LogMailer writes mail to the log instead of delivering it. Used in
// development environments where no SMTP relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to string, kind ports.MailKind, payload ports.MailPayload) error {
	m.log.Info().
		Str("to", to).
		Str("kind", string(kind)).
		Str("name", payload.Name).
		Str("token", payload.Token).
		Msg("mail (log only)")
	metrics.EmailsSentTotal.WithLabelValues(string(kind), "ok").Inc()
	return nil
}
