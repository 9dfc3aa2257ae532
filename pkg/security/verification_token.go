package security

import (
	"errors"
	"time"

	"weatherapp/pkg/util"
)

const (
	DefaultTokenSize = 32
	DefaultResetTTL  = time.Hour
)

// TokenIssuer hands out the opaque single-use tokens mailed to users
type TokenIssuer struct {
	Size     int           // Random bytes per token, the hex string is twice as long
	ResetTTL time.Duration // How long a password reset token stays redeemable
}

func NewTokenIssuer(size int, resetTTL time.Duration) *TokenIssuer {
	if size <= 0 {
		size = DefaultTokenSize
	}

	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}

	return &TokenIssuer{
		Size:     size,
		ResetTTL: resetTTL,
	}
}

// VerifyToken returns a token for the email verification link
func (t *TokenIssuer) VerifyToken() (string, error) {
	return t.generate()
}

// ResetToken returns a password reset token and the moment it stops being valid
func (t *TokenIssuer) ResetToken(now time.Time) (string, time.Time, error) {
	token, err := t.generate()
	if err != nil {
		return "", time.Time{}, err
	}

	return token, now.Add(t.ResetTTL), nil
}

func (t *TokenIssuer) generate() (string, error) {
	if t.Size <= 0 {
		return "", errors.New("token size must be bigger than 0")
	}

	return util.GenerateToken(t.Size)
}
