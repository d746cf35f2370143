package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, to string, _ ports.MailKind, _ ports.MailPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestMailDispatcher_DeliversAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := &recordingMailer{}
	d := NewMailDispatcher(4, mailer, zerolog.Nop())
	d.Start(ctx)

	const total = 50
	for i := 0; i < total; i++ {
		if err := d.Send(ctx, "alice@example.com", ports.MailWelcome, ports.MailPayload{Name: "Alice"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for mailer.count() < total {
		select {
		case <-deadline:
			t.Fatalf("delivered %d of %d before timeout", mailer.count(), total)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMailDispatcher_ShardIsStable(t *testing.T) {
	d := NewMailDispatcher(8, &recordingMailer{}, zerolog.Nop())

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice@example.com") != first {
			t.Fatalf("shard index must be deterministic per recipient")
		}
	}
}
