package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type mailJob struct {
	to      string
	kind    ports.MailKind
	payload ports.MailPayload
}

// MailDispatcher delivers non-critical mail asynchronously through a fixed set
// of workers, sharded by recipient so mail to one address stays ordered. It
// implements ports.Mailer; Send enqueues and returns immediately, so delivery
// failures never surface to the request path.
type MailDispatcher struct {
	workers []chan mailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers
// delegating delivery to mailer. If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan mailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan mailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues the mail for asynchronous delivery. The call is non-blocking
// up to channelBuffer capacity and never reports delivery errors.
func (d *MailDispatcher) Send(_ context.Context, to string, kind ports.MailKind, payload ports.MailPayload) error {
	d.workers[d.shardIndex(to)] <- mailJob{to: to, kind: kind, payload: payload}
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan mailJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.Send(ctx, job.to, job.kind, job.payload); err != nil {
				d.log.Error().Err(err).
					Str("kind", string(job.kind)).
					Int("worker_id", id).
					Msg("async mail delivery failed")
			}
		}
	}
}
