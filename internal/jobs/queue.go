package jobs

import (
	"fmt"

	"weatherapp/config"
)

// New builds the queue selected by cfg.Backend and starts its workers
func New(cfg config.Jobs, redisURL string) (Queue, error) {
	switch cfg.Backend {
	case "local":
		q := NewLocalQueue(cfg.Queue, cfg.Workers, cfg.MaxJobs, Handlers())
		q.StartWorkerPool()
		return q, nil
	case "redis":
		return NewRedisQueue(redisURL, cfg.Queue, cfg.Workers, Handlers())
	default:
		return nil, fmt.Errorf("unknown jobs backend %q", cfg.Backend)
	}
}
