package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	sendTimeout    = 10 * time.Second
)

const (
	templateWelcome      = "welcome"
	templateCancellation = "cancellation"
)

type emailJob struct {
	template string
	message  ports.EmailMessage
}

// Dispatcher routes account notifications to a fixed set of workers using
// consistent hashing on the recipient address, so messages to one recipient
// stay ordered. Enqueueing is fire-and-forget: a full shard drops the
// message rather than blocking the request that triggered it.
type Dispatcher struct {
	workers []chan emailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan emailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan emailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// AccountCreated enqueues the welcome email.
func (d *Dispatcher) AccountCreated(email, name string) {
	d.enqueue(emailJob{
		template: templateWelcome,
		message: ports.EmailMessage{
			To:      email,
			ToName:  name,
			Subject: "Thanks for joining in!",
			Body:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
		},
	})
}

// AccountDeleted enqueues the cancellation email.
func (d *Dispatcher) AccountDeleted(email, name string) {
	d.enqueue(emailJob{
		template: templateCancellation,
		message: ports.EmailMessage{
			To:      email,
			ToName:  name,
			Subject: "Sorry to see you go!",
			Body:    fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", name),
		},
	})
}

func (d *Dispatcher) enqueue(job emailJob) {
	select {
	case d.workers[d.shardIndex(job.message.To)] <- job:
	default:
		d.log.Warn().Str("to", job.message.To).Str("template", job.template).Msg("notification queue full, dropping message")
		metrics.EmailsSentTotal.WithLabelValues(job.template, "dropped").Inc()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan emailJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := d.mailer.Send(sendCtx, job.message)
			cancel()
			if err != nil {
				d.log.Error().Err(err).
					Str("to", job.message.To).
					Str("template", job.template).
					Int("worker_id", id).
					Msg("notification send failed")
				metrics.EmailsSentTotal.WithLabelValues(job.template, "error").Inc()
				continue
			}
			metrics.EmailsSentTotal.WithLabelValues(job.template, "ok").Inc()
		}
	}
}
