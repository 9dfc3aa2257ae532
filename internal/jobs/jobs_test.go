package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"weatherapp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardVisitTask(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	task, err := NewDashboardVisitTask("u1", "alice", at)
	require.NoError(t, err)
	assert.Equal(t, TypeDashboardVisit, task.Type)

	var v DashboardVisit
	require.NoError(t, json.Unmarshal(task.Payload, &v))
	assert.Equal(t, "alice", v.Username)

	assert.NoError(t, HandleDashboardVisit(context.Background(), task))
	assert.Error(t, HandleDashboardVisit(context.Background(), &Task{Type: TypeDashboardVisit, Payload: []byte("{")}))
}

func TestLocalQueueRunsTasks(t *testing.T) {
	var ran atomic.Int32

	q := NewLocalQueue("test", 2, 10, map[string]Handler{
		"ok":   func(context.Context, *Task) error { ran.Add(1); return nil },
		"fail": func(context.Context, *Task) error { return errors.New("boom") },
		"oops": func(context.Context, *Task) error { panic("oops") },
	})
	q.StartWorkerPool()

	ctx := context.Background()
	for range 3 {
		require.NoError(t, q.Enqueue(ctx, &Task{Type: "ok"}))
	}
	require.NoError(t, q.Enqueue(ctx, &Task{Type: "fail"}))
	require.NoError(t, q.Enqueue(ctx, &Task{Type: "oops"}))
	require.NoError(t, q.Enqueue(ctx, &Task{Type: "unknown"}))

	require.NoError(t, q.Close())

	s, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", s.Backend)
	assert.Equal(t, 3, s.Processed)
	assert.Equal(t, 3, s.Failed)
	assert.Zero(t, s.Pending)
	assert.Zero(t, s.Active)
	assert.Equal(t, int32(3), ran.Load())

	assert.ErrorIs(t, q.Enqueue(ctx, &Task{Type: "ok"}), ErrQueueClosed)
	assert.NoError(t, q.Close())
}

func TestLocalQueueFull(t *testing.T) {
	// No workers, so nothing drains the buffer
	q := NewLocalQueue("test", 0, 1, Handlers())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &Task{Type: TypeDashboardVisit}))
	assert.ErrorIs(t, q.Enqueue(ctx, &Task{Type: TypeDashboardVisit}), ErrQueueFull)

	s, _ := q.Stats(ctx)
	assert.Equal(t, 1, s.Pending)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(config.Jobs{Backend: "carrier-pigeon"}, "")
	assert.Error(t, err)
}

// Needs a running redis, e.g. REDIS_URL=redis://localhost:6379/0
func TestRedisQueue(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	q, err := New(config.Jobs{Backend: "redis", Queue: "weather_test", Workers: 1, MaxJobs: 10}, url)
	require.NoError(t, err)
	defer q.Close()

	task, err := NewDashboardVisitTask("u1", "alice", time.Now())
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(context.Background(), task))

	s, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "redis", s.Backend)
}
