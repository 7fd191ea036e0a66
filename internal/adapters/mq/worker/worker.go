// Package worker runs background model retraining.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/finno/internal/adapters/mq/queue"
	"github.com/okian/finno/pkg/logger"
	"github.com/okian/finno/pkg/metrics"
)

// Trainer rebuilds the models from the current ledgers.
type Trainer interface {
	Retrain(ctx context.Context, reason string) error
}

// Queue defines how the worker receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
	Drain(ctx context.Context) []queue.Job
}

// Worker consumes retrain jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called or
	// the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker after the retrain in progress, if any.
	Shutdown(ctx context.Context) error
}

// RetrainWorker is a single consumer. Jobs queued while a retrain runs are
// folded into one follow-up retrain.
type RetrainWorker struct {
	queue   Queue
	trainer Trainer
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

var _ Worker = (*RetrainWorker)(nil)

// NewRetrainWorker creates a worker reading from q.
func NewRetrainWorker(q Queue, trainer Trainer, opts ...Option) *RetrainWorker {
	w := &RetrainWorker{
		queue:    q,
		trainer:  trainer,
		name:     "retrain",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until stopped.
func (w *RetrainWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "retrain failed", logger.Error(err))
			}
		}
	}
}

// Shutdown signals the loop and waits for it to exit.
func (w *RetrainWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *RetrainWorker) process(ctx context.Context, job queue.Job) error {
	pending := w.queue.Drain(ctx)
	if len(pending) > 0 {
		metrics.RecordRetrainCoalesced(len(pending))
	}

	start := time.Now()
	if err := w.trainer.Retrain(ctx, job.Reason); err != nil {
		metrics.RecordErrorByComponent("retrain_worker", "retrain_error")
		return fmt.Errorf("retrain for %q: %w", job.Reason, err)
	}

	w.logger.Info(ctx, "models retrained",
		logger.String("reason", job.Reason),
		logger.String("userID", job.UserID),
		logger.Int("coalesced", len(pending)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
