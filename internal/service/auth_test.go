package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weatherapp/db"
	"weatherapp/internal/store"
	"weatherapp/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	kind  string
	to    string
	token string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) SendVerificationEmail(_ context.Context, to, token string) error {
	return n.record("verify", to, token)
}

func (n *recordingNotifier) SendResetEmail(_ context.Context, to, token string) error {
	return n.record("reset", to, token)
}

func (n *recordingNotifier) record(kind, to, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}

	n.sent = append(n.sent, sentMail{kind, to, token})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentMail {
	t.Helper()

	n.mu.Lock()
	defer n.mu.Unlock()

	require.NotEmpty(t, n.sent, "no mail was sent")
	return n.sent[len(n.sent)-1]
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	svc      *AuthService
	store    *store.Gorm
	notifier *recordingNotifier
	clock    *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	d, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	h := &harness{
		store:    store.NewGorm(d),
		notifier: &recordingNotifier{},
		clock:    &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	h.svc = NewAuthService(AuthDeps{
		Store:    h.store,
		Notifier: h.notifier,
		Hasher: &security.ArgonHash{
			Memory:      8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Tokens: security.NewTokenIssuer(32, time.Hour),
		Now:    h.clock.Now,
	})

	return h
}

func validSignup() SignupInput {
	return SignupInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Phone:    "555-0100",
		Password: "hunter2",
		Gender:   "female",
	}
}

func assertKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.True(t, IsUserError(err))
	assert.Equal(t, msg, err.Error())
}

// signupVerified registers alice and redeems the verification link
func (h *harness) signupVerified(t *testing.T) {
	t.Helper()

	_, err := h.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = h.svc.VerifyEmail(context.Background(), h.notifier.last(t).token)
	require.NoError(t, err)
}

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.Verified)
	assert.NotEqual(t, "hunter2", u.PasswordHash)
	require.NotNil(t, u.VerifyToken)
	assert.Len(t, *u.VerifyToken, 64)

	mail := h.notifier.last(t)
	assert.Equal(t, "verify", mail.kind)
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Equal(t, *u.VerifyToken, mail.token)

	stored, err := h.store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestSignupMissingField(t *testing.T) {
	h := newHarness(t)

	for _, mutate := range []func(*SignupInput){
		func(in *SignupInput) { in.Username = "" },
		func(in *SignupInput) { in.Email = "  " },
		func(in *SignupInput) { in.Phone = "" },
		func(in *SignupInput) { in.Password = "" },
		func(in *SignupInput) { in.Gender = "" },
	} {
		in := validSignup()
		mutate(&in)

		_, err := h.svc.Signup(context.Background(), in)
		assertKind(t, err, ErrValidation, MsgMissingFields)
	}

	assert.Empty(t, h.notifier.sent)
}

func TestSignupInvalidEmail(t *testing.T) {
	h := newHarness(t)

	in := validSignup()
	in.Email = "not-an-email"

	_, err := h.svc.Signup(context.Background(), in)
	assertKind(t, err, ErrValidation, MsgInvalidEmail)
}

func TestSignupDuplicateEmailIgnoresCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Email = "ALICE@example.COM"

	_, err = h.svc.Signup(ctx, in)
	assertKind(t, err, ErrDuplicate, MsgEmailRegistered)
	assert.Len(t, h.notifier.sent, 1)
}

func TestSignupMailFailureKeepsUser(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("smtp down")

	u, err := h.svc.Signup(context.Background(), validSignup())
	require.Error(t, err)
	assert.False(t, IsUserError(err))
	require.NotNil(t, u)

	stored, err := h.store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, stored.Verified)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	token := h.notifier.last(t).token

	u, err := h.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Nil(t, u.VerifyToken)

	_, err = h.svc.VerifyEmail(ctx, token)
	assertKind(t, err, ErrNotFound, MsgInvalidVerifyLink)

	_, err = h.svc.VerifyEmail(ctx, "")
	assertKind(t, err, ErrNotFound, MsgInvalidVerifyLink)
}

func TestSigninRequiresVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = h.svc.Signin(ctx, "alice@example.com", "hunter2")
	assertKind(t, err, ErrUnverified, MsgVerifyFirst)
}

func TestSigninCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	u, err := h.svc.Signin(ctx, " ALICE@example.com ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, wrongPass := h.svc.Signin(ctx, "alice@example.com", "wrong")
	assertKind(t, wrongPass, ErrAuthentication, MsgInvalidCredentials)

	_, unknown := h.svc.Signin(ctx, "bob@example.com", "hunter2")
	assertKind(t, unknown, ErrAuthentication, MsgInvalidCredentials)

	assert.Equal(t, wrongPass.Error(), unknown.Error())

	_, err = h.svc.Signin(ctx, "", "")
	assertKind(t, err, ErrAuthentication, MsgInvalidCredentials)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	h := newHarness(t)

	err := h.svc.ForgotPassword(context.Background(), "nobody@example.com")
	assertKind(t, err, ErrNotFound, MsgEmailNotFound)
	assert.Empty(t, h.notifier.sent)
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))

	mail := h.notifier.last(t)
	assert.Equal(t, "reset", mail.kind)

	u, err := h.store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.ResetToken)
	require.NotNil(t, u.ResetTokenExpires)
	assert.Equal(t, mail.token, *u.ResetToken)
	assert.True(t, h.clock.Now().Add(time.Hour).Equal(*u.ResetTokenExpires))
}

func TestForgotPasswordReplacesPreviousToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	first := h.notifier.last(t).token

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	second := h.notifier.last(t).token
	assert.NotEqual(t, first, second)

	_, err := h.svc.CheckResetToken(ctx, first)
	assertKind(t, err, ErrNotFound, MsgInvalidResetLink)

	_, err = h.svc.CheckResetToken(ctx, second)
	require.NoError(t, err)
}

func TestResetTokenExpiresAtDeadline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	token := h.notifier.last(t).token

	h.clock.Advance(time.Hour - time.Second)
	_, err := h.svc.CheckResetToken(ctx, token)
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	_, err = h.svc.CheckResetToken(ctx, token)
	assertKind(t, err, ErrExpired, MsgInvalidResetLink)

	_, err = h.svc.ResetPassword(ctx, ResetInput{Token: token, Password: "new", ConfirmPassword: "new"})
	assertKind(t, err, ErrExpired, MsgResetLinkExpired)
}

func TestResetPasswordValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	token := h.notifier.last(t).token

	_, err := h.svc.ResetPassword(ctx, ResetInput{Token: token, Password: "new"})
	assertKind(t, err, ErrValidation, MsgMissingPasswords)

	_, err = h.svc.ResetPassword(ctx, ResetInput{Token: token, Password: "new", ConfirmPassword: "other"})
	assertKind(t, err, ErrMismatch, MsgPasswordsMismatch)

	_, err = h.svc.ResetPassword(ctx, ResetInput{Token: "bogus", Password: "new", ConfirmPassword: "new"})
	assertKind(t, err, ErrNotFound, MsgResetLinkExpired)

	// Failed attempts leave the token usable
	_, err = h.svc.CheckResetToken(ctx, token)
	require.NoError(t, err)
}

func TestResetPasswordChangesCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	token := h.notifier.last(t).token

	u, err := h.svc.ResetPassword(ctx, ResetInput{Token: token, Password: "s3cret", ConfirmPassword: "s3cret"})
	require.NoError(t, err)
	assert.Nil(t, u.ResetToken)
	assert.Nil(t, u.ResetTokenExpires)

	_, err = h.svc.Signin(ctx, "alice@example.com", "hunter2")
	assertKind(t, err, ErrAuthentication, MsgInvalidCredentials)

	_, err = h.svc.Signin(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = h.svc.ResetPassword(ctx, ResetInput{Token: token, Password: "again", ConfirmPassword: "again"})
	assertKind(t, err, ErrNotFound, MsgResetLinkExpired)
}

type countingSweeper struct {
	calls int
	n     int64
}

func (s *countingSweeper) DeleteExpired(context.Context, time.Time) (int64, error) {
	s.calls++
	return s.n, nil
}

func TestCleanupRun(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signupVerified(t)

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@example.com"))
	token := h.notifier.last(t).token

	sweeper := &countingSweeper{n: 3}
	c := NewCleanup(h.store, sweeper, func() time.Time { return h.clock.Now().Add(2 * time.Hour) })

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, 1, sweeper.calls)

	_, err := h.store.FindByResetToken(ctx, token)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCleanupScheduleRejectsBadSpec(t *testing.T) {
	h := newHarness(t)

	_, err := NewCleanup(h.store, nil, nil).Schedule("every now and then")
	assert.Error(t, err)
}
