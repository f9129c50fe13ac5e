package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"spacebook/shared/constant"
	"spacebook/shared/failure"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// checker is implemented by value types that know their own format, e.g. a room key.
type checker interface {
	Check() error
}

func registerCheckValidation(fl val.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}

	if c, ok := field.Interface().(checker); ok {
		return c.Check() == nil
	}

	return false
}

func layoutValidation(layout string) val.Func {
	return func(fl val.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		parsed, err := time.Parse(layout, str)
		if err != nil {
			return false
		}

		// time.Parse accepts some overflowing days for layouts without zero padding
		return parsed.Format(layout) == str
	}
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	register := map[string]val.Func{
		"check":     registerCheckValidation,
		"day":       layoutValidation(constant.DayFormat),
		"yearmonth": layoutValidation(constant.YearMonthFormat),
		"empty": func(fl val.FieldLevel) bool {
			return fl.Field().IsZero()
		},
	}

	for tag, fn := range register {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate decodes JSON from r into data and validates the result.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
