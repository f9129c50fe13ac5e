package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"max":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"email":       "{field} must be a valid email address",
	"day":         "{field} must be a calendar date (YYYY-MM-DD)",
	"yearmonth":   "{field} must be a month (YYYY-MM)",
	"check":       "{field} has an invalid format",
	"uuid":        "{field} must be a valid UUID",
	"excluded_if": "{field} is not allowed here",
}

func fieldMessage(fieldErr val.FieldError) string {
	template, ok := messages[fieldErr.Tag()]
	if !ok {
		return fieldErr.Field() + " is invalid (" + fieldErr.Tag() + ")"
	}

	return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
}

// message renders one sentence per failing field, in struct order.
func message(err error) string {
	var fieldErrs val.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		parts = append(parts, fieldMessage(fieldErr))
	}

	return strings.Join(parts, "; ")
}
