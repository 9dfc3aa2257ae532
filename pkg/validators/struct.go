package validators

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct runs the `validate` tags of v. Whitespace only strings should be
// trimmed by the caller beforehand, "required" only rejects empty values.
func Struct(v any) error {
	return validate.Struct(v)
}

// MissingFields lists the struct fields that failed a "required" rule
func MissingFields(err error) []string {
	var fields []string

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
	}

	return fields
}
