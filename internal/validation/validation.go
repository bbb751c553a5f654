// Package validation checks form payloads with go-playground/validator
// before they leave the portal, and reports failures in the API's own
// field -> messages shape so pages render both the same way.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates v and returns the failing fields, or nil when v is valid.
func Struct(v any) (map[string][]string, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	return Messages(verrs), nil
}

// Messages converts validator field errors into human-readable sentences
// keyed by the JSON field name.
func Messages(errs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, e := range errs {
		field := e.Field()
		label := strings.ReplaceAll(field, "_", " ")

		var msg string
		switch e.ActualTag() {
		case "required":
			msg = fmt.Sprintf("The %s field is required.", label)
		case "email":
			msg = fmt.Sprintf("The %s must be a valid email address.", label)
		case "min":
			msg = fmt.Sprintf("The %s must be at least %s characters.", label, e.Param())
		case "eqfield":
			msg = fmt.Sprintf("The %s confirmation does not match.", strings.TrimSuffix(label, " confirmation"))
		case "gt":
			msg = fmt.Sprintf("The %s field is required.", label)
		default:
			msg = fmt.Sprintf("The %s is invalid.", label)
		}
		out[field] = append(out[field], msg)
	}
	return out
}
