package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"weatherapp/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	Secret string
	Cookie string
	TTL    time.Duration
	Secure bool
}

type claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager issues and resolves session cookies. The cookie is an HS256
// token whose sid claim names a session in the Store.
type Manager struct {
	store  Store
	secret []byte
	cookie string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(s Store, o Options) *Manager {
	if o.Cookie == "" {
		o.Cookie = "session"
	}

	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}

	return &Manager{
		store:  s,
		secret: []byte(o.Secret),
		cookie: o.Cookie,
		ttl:    o.TTL,
		secure: o.Secure,
		now:    time.Now,
	}
}

// Create starts a session for u and sets the cookie
func (m *Manager) Create(c *gin.Context, u *model.User) (*Data, error) {
	now := m.now()
	d := dataFromUser(uuid.NewString(), u, now.Add(m.ttl))

	if err := m.store.Put(c.Request.Context(), d); err != nil {
		return nil, fmt.Errorf("failed to store session, %w", err)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		SID: d.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(d.ExpiresAt),
		},
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token, %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie, signed, int(m.ttl.Seconds()), "/", "", m.secure, true)

	return d, nil
}

// Load resolves the request's session. Any problem with the cookie is
// reported as ErrNoSession, store failures are returned as they are.
func (m *Manager) Load(c *gin.Context) (*Data, error) {
	sid, err := m.sessionID(c)
	if err != nil {
		return nil, err
	}

	return m.store.Get(c.Request.Context(), sid)
}

// Destroy drops the session, if any, and clears the cookie
func (m *Manager) Destroy(c *gin.Context) error {
	defer func() {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cookie, "", -1, "/", "", m.secure, true)
	}()

	sid, err := m.sessionID(c)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}

		return err
	}

	return m.store.Delete(c.Request.Context(), sid)
}

func (m *Manager) sessionID(c *gin.Context) (string, error) {
	raw, err := c.Cookie(m.cookie)
	if err != nil || raw == "" {
		return "", ErrNoSession
	}

	var cl claims
	_, err = jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		zap.L().Debug("Rejected session cookie", zap.Error(err))
		return "", ErrNoSession
	}

	if cl.SID == "" {
		return "", ErrNoSession
	}

	return cl.SID, nil
}
