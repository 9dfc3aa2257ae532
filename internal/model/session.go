package model

import "time"

// Session is the server side half of a login. The cookie only carries
// a signed reference to the ID.
type Session struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	Username  string
	Email     string
	Phone     string
	Gender    string
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
