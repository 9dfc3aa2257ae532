// Package model defines database models
package model

import "time"

type User struct {
	ID                string     `gorm:"primaryKey" bson:"_id" json:"id"`
	Username          string     `gorm:"not null" bson:"username" json:"username"`
	Email             string     `gorm:"uniqueIndex;not null" bson:"email" json:"email"` // Always stored lower-cased
	Phone             string     `gorm:"not null" bson:"phone" json:"phone"`
	Gender            string     `gorm:"not null" bson:"gender" json:"gender"`
	PasswordHash      string     `gorm:"not null" bson:"password_hash" json:"-"`
	Verified          bool       `gorm:"default:false" bson:"verified" json:"verified"`
	VerifyToken       *string    `gorm:"uniqueIndex" bson:"verify_token,omitempty" json:"-"` // Only set while the account is unverified
	ResetToken        *string    `gorm:"uniqueIndex" bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpires *time.Time `bson:"reset_token_expires,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// ResetTokenValid reports whether the user holds a reset token that can
// still be redeemed at time now. Expiry is exclusive.
func (u *User) ResetTokenValid(now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpires == nil {
		return false
	}

	return now.Before(*u.ResetTokenExpires)
}

// ClearResetToken drops the reset token together with its expiry
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpires = nil
}
