package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("nope"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Alice <a@x.com>"), ErrEmailInvalid)
	assert.NoError(t, EmailValidator("a@x.com"))
}

func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", CanonicalEmail("  A@X.com "))
}

func TestPasswordValidator(t *testing.T) {
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
	assert.NoError(t, PasswordValidator("p1"))
}

type form struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

func TestStructMissingFields(t *testing.T) {
	err := Struct(form{Name: "alice"})
	assert.Error(t, err)
	assert.Equal(t, []string{"email"}, MissingFields(err))

	assert.NoError(t, Struct(form{Name: "alice", Email: "a@x.com"}))
}
