package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

func newTestSMTPMailer() *SMTPMailer {
	return NewSMTPMailer(Config{
		Host:      "smtp.example.com",
		Port:      587,
		From:      "noreply@example.com",
		ClientURL: "https://hub.example.com",
	}, zerolog.Nop())
}

func TestSMTPMailer_SendsRenderedMessage(t *testing.T) {
	m := newTestSMTPMailer()

	var gotTo []string
	var gotMsg []byte
	m.send = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = msg
		return nil
	}

	okBefore := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("verification", "ok"))
	err := m.Send(context.Background(), "alice@example.com", ports.MailVerification, ports.MailPayload{
		Name:  "Alice",
		Token: "raw-token",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(string(gotMsg), "verify-email?token=raw-token") {
		t.Fatalf("message missing verification link:\n%s", gotMsg)
	}
	if got := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("verification", "ok")) - okBefore; got != 1 {
		t.Fatalf("ok counter moved by %v, want 1", got)
	}
}

func TestSMTPMailer_DeliveryFailureCounted(t *testing.T) {
	m := newTestSMTPMailer()
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		return errors.New("relay refused")
	}

	errBefore := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("reset", "error"))
	err := m.Send(context.Background(), "alice@example.com", ports.MailReset, ports.MailPayload{
		Name:  "Alice",
		Token: "reset-token",
	})
	if err == nil {
		t.Fatalf("expected a delivery error")
	}
	if got := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("reset", "error")) - errBefore; got != 1 {
		t.Fatalf("error counter moved by %v, want 1", got)
	}
}

func TestLogMailer_CountsDelivery(t *testing.T) {
	m := NewLogMailer(zerolog.Nop())

	okBefore := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("welcome", "ok"))
	if err := m.Send(context.Background(), "alice@example.com", ports.MailWelcome, ports.MailPayload{Name: "Alice"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues("welcome", "ok")) - okBefore; got != 1 {
		t.Fatalf("ok counter moved by %v, want 1", got)
	}
}
