// Package jobs runs small background tasks. Requests enqueue and move on,
// a failed enqueue is logged and never surfaces to the user.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const TypeDashboardVisit = "dashboard:visit"

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrQueueClosed = errors.New("job queue closed")
)

type Task struct {
	Type    string
	Payload []byte
}

type Handler func(ctx context.Context, t *Task) error

type DashboardVisit struct {
	UserID   string    `json:"userID"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

func NewDashboardVisitTask(userID, username string, at time.Time) (*Task, error) {
	b, err := json.Marshal(DashboardVisit{UserID: userID, Username: username, At: at})
	if err != nil {
		return nil, err
	}

	return &Task{Type: TypeDashboardVisit, Payload: b}, nil
}

func HandleDashboardVisit(_ context.Context, t *Task) error {
	var v DashboardVisit
	if err := json.Unmarshal(t.Payload, &v); err != nil {
		return fmt.Errorf("bad %s payload, %w", t.Type, err)
	}

	zap.L().Info("Dashboard visited",
		zap.String("user_id", v.UserID),
		zap.String("username", v.Username),
		zap.Time("at", v.At),
	)

	return nil
}

// Handlers maps every task type this app knows to its handler
func Handlers() map[string]Handler {
	return map[string]Handler{
		TypeDashboardVisit: HandleDashboardVisit,
	}
}

type Stats struct {
	Backend   string `json:"backend"`
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
}

type Queue interface {
	Enqueue(ctx context.Context, t *Task) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
