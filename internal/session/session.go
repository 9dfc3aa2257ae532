// Package session keeps track of signed in users. The browser holds a
// signed cookie naming a session, the session data itself lives in a Store.
package session

import (
	"context"
	"errors"
	"time"

	"weatherapp/internal/model"
)

var ErrNoSession = errors.New("no session")

// Data is what a page needs to know about the signed in user
type Data struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func dataFromUser(id string, u *model.User, expiresAt time.Time) *Data {
	return &Data{
		ID:        id,
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Gender:    u.Gender,
		ExpiresAt: expiresAt,
	}
}

// Store persists session data by ID. Get returns ErrNoSession for unknown
// and expired sessions alike.
type Store interface {
	Put(ctx context.Context, d *Data) error
	Get(ctx context.Context, id string) (*Data, error)
	Delete(ctx context.Context, id string) error
}
