package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<h2>Welcome to Student Material Hub, {{.Name}}!</h2>
<p>Please verify your email address to activate your account.</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>This link expires in 24 hours. If you did not create an account, ignore this message.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<h2>Password reset requested</h2>
<p>Hi {{.Name}}, we received a request to reset your password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, ignore this message.</p>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Your account is active, {{.Name}}!</h2>
<p>You can now upload notes, browse materials, and join the Q&amp;A forum.</p>
`))

type templateData struct {
	Name string
	Link string
}

func render(clientURL string, kind ports.MailKind, payload ports.MailPayload) (subject, body string, err error) {
	var tmpl *template.Template
	data := templateData{Name: payload.Name}

	switch kind {
	case ports.MailVerification:
		subject = "Verify your email address"
		tmpl = verificationTmpl
		data.Link = fmt.Sprintf("%s/verify-email?token=%s", clientURL, payload.Token)
	case ports.MailReset:
		subject = "Reset your password"
		tmpl = resetTmpl
		data.Link = fmt.Sprintf("%s/reset-password?token=%s", clientURL, payload.Token)
	case ports.MailWelcome:
		subject = "Welcome to Student Material Hub"
		tmpl = welcomeTmpl
	default:
		return "", "", fmt.Errorf("unknown mail kind %q", kind)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render %s mail: %w", kind, err)
	}
	return subject, b.String(), nil
}
