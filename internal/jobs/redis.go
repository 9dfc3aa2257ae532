package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisQueue runs tasks through asynq so they survive restarts and can be
// shared between instances
type RedisQueue struct {
	name      string
	client    *asynq.Client
	server    *asynq.Server
	inspector *asynq.Inspector
}

func NewRedisQueue(redisURL, name string, workers int, handlers map[string]Handler) (*RedisQueue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url, %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: workers,
		Queues:      map[string]int{name: 1},
		Logger:      zap.S(),
	})

	mux := asynq.NewServeMux()
	for typ, h := range handlers {
		mux.HandleFunc(typ, func(ctx context.Context, t *asynq.Task) error {
			return h(ctx, &Task{Type: t.Type(), Payload: t.Payload()})
		})
	}

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start job server, %w", err)
	}

	return &RedisQueue{
		name:      name,
		client:    asynq.NewClient(opt),
		server:    srv,
		inspector: asynq.NewInspector(opt),
	}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, t *Task) error {
	info, err := q.client.EnqueueContext(ctx,
		asynq.NewTask(t.Type, t.Payload),
		asynq.Queue(q.name),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	zap.L().Debug("New job enqueued", zap.String("type", t.Type), zap.String("job_id", info.ID))
	return nil
}

func (q *RedisQueue) Stats(_ context.Context) (*Stats, error) {
	s := &Stats{Backend: "redis", Queue: q.name}

	queues, err := q.inspector.Queues()
	if err != nil {
		return nil, err
	}

	// Queues only exist once something was enqueued
	if !slices.Contains(queues, q.name) {
		return s, nil
	}

	info, err := q.inspector.GetQueueInfo(q.name)
	if err != nil {
		return nil, err
	}

	s.Pending = info.Pending
	s.Active = info.Active
	s.Processed = info.Processed
	s.Failed = info.Failed

	return s, nil
}

func (q *RedisQueue) Close() error {
	q.server.Shutdown()

	return errors.Join(q.client.Close(), q.inspector.Close())
}
