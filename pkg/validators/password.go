package validators

import "errors"

var (
	ErrPasswordTooLong = errors.New("password is too long")
	ErrPasswordEmpty   = errors.New("no password provided")
)

// PasswordValidator only rejects passwords that can't be hashed sensibly.
// There is no strength policy.
func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}
