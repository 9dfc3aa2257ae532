package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weatherapp/internal/model"
	"weatherapp/internal/store"
	"weatherapp/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	userIDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	userIDLength  = 16
)

type PasswordHasher interface {
	GenerateFromPassword(p string) (string, error)
	VerifyPasswd(p, encoded string) (bool, error)
}

type TokenIssuer interface {
	VerifyToken() (string, error)
	ResetToken(now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthDeps struct {
	Store    store.UserStore
	Notifier Notifier
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Now      func() time.Time // Defaults to time.Now
}

// AuthService drives the account lifecycle: signup, email verification,
// signin and the forgot/reset password flow.
type AuthService struct {
	store    store.UserStore
	notifier Notifier
	hasher   PasswordHasher
	tokens   TokenIssuer
	now      func() time.Time
}

func NewAuthService(d AuthDeps) *AuthService {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		store:    d.Store,
		notifier: d.Notifier,
		hasher:   d.Hasher,
		tokens:   d.Tokens,
		now:      now,
	}
}

type SignupInput struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required"`
	Phone    string `form:"phone" validate:"required"`
	Password string `form:"password" validate:"required"`
	Gender   string `form:"gender" validate:"required"`
}

// Signup registers an unverified account and mails the verification link.
// The account is kept when the mail can't be sent.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = validators.CanonicalEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.TrimSpace(in.Gender)

	if err := validators.Struct(in); err != nil {
		zap.L().Debug("Signup rejected", zap.Strings("missing", validators.MissingFields(err)))
		return nil, fail(ErrValidation, MsgMissingFields)
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return nil, fail(ErrValidation, MsgInvalidEmail)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, fail(ErrValidation, MsgPasswordTooLong)
	}

	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, fail(ErrDuplicate, MsgEmailRegistered)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to check if user is registered, %w", err)
	}

	hash, err := s.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	verifyToken, err := s.tokens.VerifyToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token, %w", err)
	}

	userID, err := gonanoid.Generate(userIDCharset, userIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := &model.User{
		ID:           userID,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Gender:       in.Gender,
		PasswordHash: hash,
		Verified:     false,
		VerifyToken:  &verifyToken,
	}

	if err := s.store.Create(ctx, user); err != nil {
		// Lost the race against a concurrent signup for the same email
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fail(ErrDuplicate, MsgEmailRegistered)
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, verifyToken); err != nil {
		return user, fmt.Errorf("failed to send verification email, %w", err)
	}

	return user, nil
}

// VerifyEmail redeems a verification token. Tokens are single use, a
// replayed link is indistinguishable from one that was never issued.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	user, err := s.store.FindByVerifyToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(ErrNotFound, MsgInvalidVerifyLink)
		}

		return nil, fmt.Errorf("failed to look up verification token, %w", err)
	}

	user.Verified = true
	user.VerifyToken = nil

	if err := s.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to mark user as verified, %w", err)
	}

	return user, nil
}

// Signin checks credentials. An unknown email and a wrong password fail
// with the same message, an unverified account gets its own.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*model.User, error) {
	email = validators.CanonicalEmail(email)
	if email == "" || password == "" {
		return nil, fail(ErrAuthentication, MsgInvalidCredentials)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(ErrAuthentication, MsgInvalidCredentials)
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	if !user.Verified {
		return nil, fail(ErrUnverified, MsgVerifyFirst)
	}

	ok, err := s.hasher.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, fail(ErrAuthentication, MsgInvalidCredentials)
	}

	return user, nil
}

// ForgotPassword issues a fresh reset token and mails it. Unlike Signin this
// tells the caller when no account uses the email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = validators.CanonicalEmail(email)
	if email == "" {
		return fail(ErrNotFound, MsgEmailNotFound)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(ErrNotFound, MsgEmailNotFound)
		}

		return fmt.Errorf("failed to look up user, %w", err)
	}

	token, expiresAt, err := s.tokens.ResetToken(s.now())
	if err != nil {
		return fmt.Errorf("failed to generate reset token, %w", err)
	}

	user.ResetToken = &token
	user.ResetTokenExpires = &expiresAt

	if err := s.store.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token, %w", err)
	}

	if err := s.notifier.SendResetEmail(ctx, user.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email, %w", err)
	}

	return nil
}

// CheckResetToken is the first step of a reset: the token must exist and be
// strictly before its expiry.
func (s *AuthService) CheckResetToken(ctx context.Context, token string) (*model.User, error) {
	return s.resolveResetToken(ctx, token, MsgInvalidResetLink)
}

type ResetInput struct {
	Token           string `form:"token"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}

// ResetPassword is the second step. The token is checked again because it
// may have expired since the form was rendered.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetInput) (*model.User, error) {
	if in.Password == "" || in.ConfirmPassword == "" {
		return nil, fail(ErrValidation, MsgMissingPasswords)
	}

	if in.Password != in.ConfirmPassword {
		return nil, fail(ErrMismatch, MsgPasswordsMismatch)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, fail(ErrValidation, MsgPasswordTooLong)
	}

	user, err := s.resolveResetToken(ctx, in.Token, MsgResetLinkExpired)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	user.PasswordHash = hash
	user.ClearResetToken()

	if err := s.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store new password, %w", err)
	}

	return user, nil
}

func (s *AuthService) resolveResetToken(ctx context.Context, token, msg string) (*model.User, error) {
	user, err := s.store.FindByResetToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(ErrNotFound, msg)
		}

		return nil, fmt.Errorf("failed to look up reset token, %w", err)
	}

	if !user.ResetTokenValid(s.now()) {
		return nil, fail(ErrExpired, msg)
	}

	return user, nil
}
