package service

import (
	"context"
	"fmt"
	"time"

	"weatherapp/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper deletes expired rows and reports how many went away
type Sweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Cleanup struct {
	users    store.UserStore
	sessions Sweeper // nil when sessions expire on their own
	now      func() time.Time
	timeout  time.Duration
}

func NewCleanup(users store.UserStore, sessions Sweeper, now func() time.Time) *Cleanup {
	if now == nil {
		now = time.Now
	}

	return &Cleanup{
		users:    users,
		sessions: sessions,
		now:      now,
		timeout:  time.Minute,
	}
}

// Run clears reset tokens past their expiry and, if configured, deletes
// expired sessions
func (c *Cleanup) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	now := c.now()

	n, err := c.users.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clear expired reset tokens, %w", err)
	}

	if n > 0 {
		zap.L().Debug("Cleared expired reset tokens", zap.Int64("count", n))
	}

	if c.sessions == nil {
		return nil
	}

	n, err = c.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions, %w", err)
	}

	if n > 0 {
		zap.L().Debug("Deleted expired sessions", zap.Int64("count", n))
	}

	return nil
}

// Schedule attaches Run to a started cron scheduler. The caller owns the
// returned scheduler and must Stop it on shutdown.
func (c *Cleanup) Schedule(spec string) (*cron.Cron, error) {
	sched := cron.New()

	_, err := sched.AddFunc(spec, func() {
		if err := c.Run(context.Background()); err != nil {
			zap.L().Error("Cleanup run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", spec, err)
	}

	sched.Start()
	zap.L().Debug("Token cleanup attached", zap.String("schedule", spec))

	return sched, nil
}
