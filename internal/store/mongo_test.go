package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a running MongoDB, e.g. MONGO_URI=mongodb://localhost:27017
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewMongo(ctx, uri, "weatherapp_test")
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.users.DeleteMany(ctx, map[string]any{})
	require.NoError(t, err)

	require.NoError(t, s.Create(ctx, newUser("u1", "a@x.com")))
	assert.ErrorIs(t, s.Create(ctx, newUser("u2", "a@x.com")), ErrDuplicate)

	u, err := s.FindByVerifyToken(ctx, "verify-u1")
	require.NoError(t, err)

	u.Verified = true
	u.VerifyToken = nil
	require.NoError(t, s.Save(ctx, u))

	_, err = s.FindByVerifyToken(ctx, "verify-u1")
	assert.ErrorIs(t, err, ErrNotFound)
}
