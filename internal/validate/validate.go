// Package validate checks request payloads and reports failures as a map of
// JSON field names to readable messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	instance     = newValidator()
	dbIdentifier = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"oneof":    "The field '%s' must be one of [%s].",
	"fqdn":     "The field '%s' must be a valid domain name.",
	"dbident":  "The field '%s' may only contain letters, digits and underscores.",
	"abspath":  "The field '%s' must be an absolute path.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("dbident", func(fl validator.FieldLevel) bool {
		return dbIdentifier.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "/")
	})

	return v
}

// Struct validates s and returns field errors keyed by JSON name. A nil map
// means s is valid.
func Struct(s any) map[string]string {
	err := instance.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		out[e.Field()] = message(e)
	}
	return out
}

// Summary flattens field errors into one deterministic line.
func Summary(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fields[k])
	}
	return strings.Join(parts, " ")
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}

	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// Var checks a single value against tag and returns the message for field, or
// an empty string when the value passes.
func Var(field string, value any, tag string) string {
	err := instance.Var(value, tag)
	if err == nil {
		return ""
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err.Error()
	}

	e := validationErrs[0]
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, field, e.Param())
	}
	return fmt.Sprintf(msg, field)
}
