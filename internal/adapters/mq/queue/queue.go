// Package queue carries retrain requests from writers to the retrain worker.
//
// Writers never block: when the queue is full the request is dropped, which
// is safe because any pending job already covers the newer ledger state.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/finno/pkg/metrics"
)

const defaultCapacity = 16

// Job asks for the models to be retrained against the current ledgers.
type Job struct {
	Reason string
	UserID string
	At     time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns ErrQueueFull when at capacity and
	// ErrQueueClosed after Close.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel jobs are delivered on. It is closed by Close.
	Dequeue(ctx context.Context) <-chan Job

	// Drain removes every job pending right now without blocking.
	Drain(ctx context.Context) []Job

	// Len returns the number of pending jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Pending jobs can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateRetrainQueueCapacity(q.capacity)
	metrics.UpdateRetrainQueueDepth(0)
	return q
}

// Enqueue adds a job without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("retrain_queue", "closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue retrain job: %w", err)
	}

	select {
	case q.jobs <- j:
		metrics.RecordRetrainEnqueued()
		metrics.UpdateRetrainQueueDepth(len(q.jobs))
		return nil
	default:
		metrics.RecordRetrainDropped()
		return ErrQueueFull
	}
}

// Dequeue returns the underlying job channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Drain empties the queue without waiting for new jobs.
func (q *InMemoryQueue) Drain(_ context.Context) []Job {
	var drained []Job
	for {
		select {
		case j, ok := <-q.jobs:
			if !ok {
				metrics.UpdateRetrainQueueDepth(0)
				return drained
			}
			drained = append(drained, j)
		default:
			metrics.UpdateRetrainQueueDepth(len(q.jobs))
			return drained
		}
	}
}

// Len returns the number of pending jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateRetrainQueueDepth(size)
	return size
}

// Close stops accepting jobs and closes the dequeue channel.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
