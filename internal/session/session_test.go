package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"weatherapp/db"
	"weatherapp/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var alice = &model.User{
	ID:       "u1",
	Username: "alice",
	Email:    "alice@example.com",
	Phone:    "555-0100",
	Gender:   "female",
}

func newContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		c.Request.AddCookie(ck)
	}

	return c, w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" {
			return ck
		}
	}

	t.Fatal("no session cookie set")
	return nil
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	d := dataFromUser("s1", alice, time.Now().Add(time.Hour))
	require.NoError(t, s.Put(ctx, d))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, s.Delete(ctx, "s1"))

	_, err = s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	testStore(t, s)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(context.Background(), dataFromUser("s1", alice, now.Add(time.Minute))))

	now = now.Add(time.Minute)
	_, err := s.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDBStore(t *testing.T) {
	d, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	testStore(t, NewDBStore(d))
}

func TestDBStoreDeleteExpired(t *testing.T) {
	d, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	s := NewDBStore(d)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Put(ctx, dataFromUser("old", alice, now.Add(-time.Minute))))
	require.NoError(t, s.Put(ctx, dataFromUser("new", alice, now.Add(time.Hour))))

	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNoSession)

	n, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}

// Needs a running redis, e.g. REDIS_URL=redis://localhost:6379/0
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	s, err := NewRedisStore(url)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	testStore(t, s)
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(NewMemoryStore(), Options{Secret: "secret"})

	c, w := newContext()
	created, err := m.Create(c, alice)
	require.NoError(t, err)

	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)

	c, _ = newContext(ck)
	got, err := m.Load(c)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)

	c, w = newContext(ck)
	require.NoError(t, m.Destroy(c))
	assert.Negative(t, sessionCookie(t, w).MaxAge)

	c, _ = newContext(ck)
	_, err = m.Load(c)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerRejectsBadCookies(t *testing.T) {
	m := NewManager(NewMemoryStore(), Options{Secret: "secret"})

	c, w := newContext()
	_, err := m.Create(c, alice)
	require.NoError(t, err)
	ck := sessionCookie(t, w)

	other := NewManager(m.store, Options{Secret: "another secret"})
	c, _ = newContext(ck)
	_, err = other.Load(c)
	assert.ErrorIs(t, err, ErrNoSession)

	c, _ = newContext(&http.Cookie{Name: "session", Value: "garbage"})
	_, err = m.Load(c)
	assert.ErrorIs(t, err, ErrNoSession)

	c, _ = newContext()
	_, err = m.Load(c)
	assert.ErrorIs(t, err, ErrNoSession)

	// Logging out without a session is fine
	c, _ = newContext()
	assert.NoError(t, m.Destroy(c))
}

func TestManagerExpiredToken(t *testing.T) {
	m := NewManager(NewMemoryStore(), Options{Secret: "secret", TTL: time.Minute})

	c, w := newContext()
	_, err := m.Create(c, alice)
	require.NoError(t, err)
	ck := sessionCookie(t, w)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	c, _ = newContext(ck)
	_, err = m.Load(c)
	assert.ErrorIs(t, err, ErrNoSession)
}
