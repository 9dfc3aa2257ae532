package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// LocalQueue is an in process worker pool. At most maxJobs tasks can wait,
// further Enqueue calls fail with ErrQueueFull.
type LocalQueue struct {
	name     string
	jobs     chan *Task
	handlers map[string]Handler
	workers  int

	pending   atomic.Int32
	active    atomic.Int32
	processed atomic.Int64
	failed    atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewLocalQueue(name string, workers, maxJobs int, handlers map[string]Handler) *LocalQueue {
	zap.L().Debug("Initializing job queue",
		zap.String("queue", name),
		zap.Int("workers", workers),
		zap.Int("max_jobs", maxJobs))

	return &LocalQueue{
		name:     name,
		jobs:     make(chan *Task, maxJobs),
		handlers: handlers,
		workers:  workers,
	}
}

func (q *LocalQueue) StartWorkerPool() {
	for range q.workers {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *LocalQueue) worker() {
	defer q.wg.Done()

	for t := range q.jobs {
		q.pending.Add(-1)
		q.active.Add(1)

		err := q.run(t)

		q.active.Add(-1)

		if err != nil {
			q.failed.Add(1)
			zap.L().Error("Job finished with an error", zap.String("type", t.Type), zap.Error(err))
		} else {
			q.processed.Add(1)
			zap.L().Debug("Job finished successfully", zap.String("type", t.Type))
		}
	}
}

func (q *LocalQueue) run(t *Task) (err error) {
	h, ok := q.handlers[t.Type]
	if !ok {
		return fmt.Errorf("no handler for task type %q", t.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h(context.Background(), t)
}

func (q *LocalQueue) Enqueue(_ context.Context, t *Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.pending.Add(1)

	select {
	case q.jobs <- t:
		zap.L().Debug("New job enqueued", zap.String("type", t.Type), zap.Int32("pending", q.pending.Load()))
		return nil
	default:
		q.pending.Add(-1)
		return ErrQueueFull
	}
}

func (q *LocalQueue) Stats(_ context.Context) (*Stats, error) {
	return &Stats{
		Backend:   "local",
		Queue:     q.name,
		Pending:   int(q.pending.Load()),
		Active:    int(q.active.Load()),
		Processed: int(q.processed.Load()),
		Failed:    int(q.failed.Load()),
	}, nil
}

// Close stops accepting tasks and waits for the workers to drain the queue
func (q *LocalQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}

	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
