package store

import (
	"context"
	"testing"
	"time"

	"weatherapp/db"
	"weatherapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGormStore(t *testing.T) *Gorm {
	t.Helper()

	d, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	return NewGorm(d)
}

func strPtr(s string) *string { return &s }

func newUser(id, email string) *model.User {
	return &model.User{
		ID:           id,
		Username:     "alice",
		Email:        email,
		Phone:        "1234567890",
		Gender:       "f",
		PasswordHash: "hash",
		VerifyToken:  strPtr("verify-" + id),
	}
}

func TestGormCreateAndFind(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newUser("u1", "a@x.com")))

	u, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.False(t, u.Verified)

	u, err = s.FindByVerifyToken(ctx, "verify-u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.FindByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByResetToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormDuplicateEmail(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newUser("u1", "a@x.com")))

	err := s.Create(ctx, newUser("u2", "a@x.com"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGormSaveClearsTokens(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	u := newUser("u1", "a@x.com")
	require.NoError(t, s.Create(ctx, u))

	u.Verified = true
	u.VerifyToken = nil
	require.NoError(t, s.Save(ctx, u))

	_, err := s.FindByVerifyToken(ctx, "verify-u1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Nil(t, got.VerifyToken)
}

func TestGormClearExpiredResetTokens(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	now := time.Now()

	expired := newUser("u1", "a@x.com")
	past := now.Add(-time.Minute)
	expired.ResetToken = strPtr("old")
	expired.ResetTokenExpires = &past
	require.NoError(t, s.Create(ctx, expired))

	live := newUser("u2", "b@x.com")
	future := now.Add(time.Hour)
	live.ResetToken = strPtr("new")
	live.ResetTokenExpires = &future
	require.NoError(t, s.Create(ctx, live))

	n, err := s.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.FindByResetToken(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.FindByResetToken(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.ID)
}
