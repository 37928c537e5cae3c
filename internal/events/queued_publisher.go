package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/pkg/jobs"
)

type queuedEvent struct {
	subject string
	event   interface{}
}

// QueuedPublisher hands events to a background worker pool so request paths never
// wait on the broker. Failed deliveries are retried by the queue.
type QueuedPublisher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewQueuedPublisher wraps next with an in-memory job queue.
func NewQueuedPublisher(next Publisher, cfg jobs.QueueConfig) *QueuedPublisher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		evt, ok := job.Payload.(queuedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", job.Payload)
		}
		return next.Publish(ctx, evt.subject, evt.event)
	}
	return &QueuedPublisher{
		queue:  jobs.NewQueue("events", handler, cfg),
		logger: cfg.Logger,
	}
}

// Start launches the delivery workers.
func (p *QueuedPublisher) Start(ctx context.Context) {
	p.queue.Start(ctx)
}

// Stop waits for in-flight deliveries to finish.
func (p *QueuedPublisher) Stop() {
	p.queue.Stop()
}

// Publish enqueues the event without blocking. A full queue drops the event.
func (p *QueuedPublisher) Publish(_ context.Context, subject string, event interface{}) error {
	err := p.queue.TryEnqueue(jobs.Job{Type: subject, Payload: queuedEvent{subject: subject, event: event}})
	if err != nil {
		p.logger.Warn("event dropped", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("enqueue %s: %w", subject, err)
	}
	return nil
}
