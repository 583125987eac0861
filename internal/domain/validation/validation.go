// Package validation turns struct tag rules into field-level errors that
// forms can render next to their inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPhoneDigits is the minimum number of digits a phone number must carry.
const MinPhoneDigits = 10

// PincodeLength is the exact number of digits in a postal pincode.
const PincodeLength = 6

// Error carries field-level validation failures keyed by the JSON field name.
// It is resolved entirely by re-rendering the form; it never reaches the store.
type Error struct {
	Fields map[string]string
}

// Error implements the error interface with a stable, sorted field listing.
func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fail builds an Error for a single field.
func Fail(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

// As reports whether err is (or wraps) a validation Error.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Prefix returns a copy of err with every field name prefixed by scope,
// e.g. "name" becomes "school.name".
func Prefix(err error, scope string) error {
	ve, ok := As(err)
	if !ok {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(ve.Fields))}
	for k, v := range ve.Fields {
		out.Fields[scope+"."+k] = v
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "trimmin", trimmedMin)
	mustRegister(v, "phone", phoneNumber)
	mustRegister(v, "pincode", pincode)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates v against its `validate` tags.
// PRE: v is a struct or pointer to struct
// POST: Returns nil, a *Error with one message per failing field, or a programming error
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := fieldPath(fe)
		if _, seen := out.Fields[key]; !seen {
			out.Fields[key] = message(fe)
		}
	}
	return out
}

// fieldPath drops the root struct name from the namespace ("School.name" -> "name").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "trimmin":
		return "must be at least " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "phone":
		return fmt.Sprintf("must contain at least %d digits", MinPhoneDigits)
	case "pincode":
		return fmt.Sprintf("must be exactly %d digits", PincodeLength)
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// trimmedMin checks the rune length of the value after trimming surrounding space.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// phoneNumber accepts digits with common separators and requires MinPhoneDigits digits.
func phoneNumber(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '+' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= MinPhoneDigits
}

func pincode(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != PincodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
