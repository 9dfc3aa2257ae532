// Package store persists user accounts. It is the only place that knows
// how users are laid out in the database.
package store

import (
	"context"
	"errors"
	"time"

	"weatherapp/internal/model"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByVerifyToken(ctx context.Context, token string) (*model.User, error)
	// FindByResetToken does not look at the expiry, callers decide
	// whether the token is still usable
	FindByResetToken(ctx context.Context, token string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Save(ctx context.Context, u *model.User) error
	// ClearExpiredResetTokens drops reset tokens that expired before now
	// and returns how many users were touched
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
