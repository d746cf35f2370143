package ports

import "context"

// MailKind selects the message template.
type MailKind string

const (
	MailVerification MailKind = "verification"
	MailReset        MailKind = "reset"
	MailWelcome      MailKind = "welcome"
)

// MailPayload carries the template variables. Token is the raw single-use
// token for verification/reset mail; empty for welcome mail.
type MailPayload struct {
	Name  string
	Token string
}

// Mailer is the email delivery collaborator. Failures are returned to the
// caller, which decides whether they roll anything back.
type Mailer interface {
	Send(ctx context.Context, to string, kind MailKind, payload MailPayload) error
}
