package service

import "errors"

// Error kinds returned by AuthService. The concrete error is always an
// *AuthError whose message is safe to show to the user.
var (
	ErrValidation     = errors.New("validation error")
	ErrDuplicate      = errors.New("duplicate")
	ErrNotFound       = errors.New("not found")
	ErrExpired        = errors.New("expired")
	ErrAuthentication = errors.New("authentication failed")
	ErrUnverified     = errors.New("unverified")
	ErrMismatch       = errors.New("mismatch")
)

// User facing messages. Signin deliberately uses one message for an
// unknown email and a wrong password.
const (
	MsgMissingFields       = "Please fill in all fields."
	MsgInvalidEmail        = "Please enter a valid email address."
	MsgPasswordTooLong     = "Password is too long."
	MsgEmailRegistered     = "Email already registered."
	MsgSignupOK            = "Signup successful! Please check your email to verify your account."
	MsgInvalidVerifyLink   = "Invalid or expired verification link."
	MsgVerifiedOK          = "Email verified successfully! You can now log in."
	MsgInvalidCredentials  = "Invalid credentials."
	MsgVerifyFirst         = "Please verify your email before signing in."
	MsgEmailNotFound       = "Email not found"
	MsgResetSent           = "Reset link sent to your email"
	MsgInvalidResetLink    = "Invalid or expired reset link."
	MsgMissingPasswords    = "Please fill both password fields."
	MsgPasswordsMismatch   = "Passwords do not match."
	MsgResetLinkExpired    = "Reset link expired or invalid."
	MsgPasswordResetOK     = "Password reset successfully! You can now sign in."
	MsgSignupFailed        = "Signup failed. Try again."
	MsgVerifyFailed        = "Email verification failed. Try again later."
	MsgSigninFailed        = "Something went wrong during sign-in."
	MsgForgotFailed        = "Something went wrong. Try again."
	MsgResetPageFailed     = "Could not load reset page."
	MsgResetPasswordFailed = "Failed to reset password. Try again."
)

type AuthError struct {
	Kind error
	Msg  string
}

func (e *AuthError) Error() string { return e.Msg }

func (e *AuthError) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error {
	return &AuthError{Kind: kind, Msg: msg}
}

// IsUserError reports whether err carries a message meant for the user.
// Anything else is an infrastructure failure.
func IsUserError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
