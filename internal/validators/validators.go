// Package validators provides the validator capability invoked by the inbound
// pipeline, together with the default validators composed by each field kind.
package validators

import (
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/hanpama/serializer/internal/coerce"
	"github.com/hanpama/serializer/internal/resolve"
)

// Validator checks a single value.
type Validator interface {
	Validate(value any) error
}

// Func adapts an ordinary function to Validator.
type Func func(value any) error

func (f Func) Validate(value any) error { return f(value) }

// Error is a validation failure. Code identifies the rule that failed.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func invalid(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// DateValidator accepts date-like values and text matching Format.
type DateValidator struct {
	Format string
	ISO    bool
}

func (v DateValidator) Validate(value any) error {
	switch x := value.(type) {
	case civil.Date, civil.DateTime, time.Time, *timestamppb.Timestamp:
		return nil
	case string:
		if _, err := coerce.ParseDate(x, v.Format, v.ISO); err != nil {
			return invalid("invalid_date", "Date has wrong format. Use format %s.", v.display())
		}
		return nil
	}
	return invalid("invalid_date", "Expected a date but got %T.", value)
}

func (v DateValidator) display() string {
	if v.ISO {
		return "YYYY-MM-DD"
	}
	return v.Format
}

// DateTimeValidator accepts date-time-like values and text matching Format.
type DateTimeValidator struct {
	Format string
	ISO    bool
}

func (v DateTimeValidator) Validate(value any) error {
	switch x := value.(type) {
	case civil.Date, civil.DateTime, time.Time, *timestamppb.Timestamp:
		return nil
	case string:
		if _, _, err := coerce.ParseDateTime(x, v.Format, v.ISO); err != nil {
			return invalid("invalid_datetime", "Datetime has wrong format. Use format %s.", v.display())
		}
		return nil
	}
	return invalid("invalid_datetime", "Expected a datetime but got %T.", value)
}

func (v DateTimeValidator) display() string {
	if v.ISO {
		return "YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]"
	}
	return v.Format
}

// UUIDValidator accepts uuid.UUID values and parseable identifier text.
type UUIDValidator struct{}

func (UUIDValidator) Validate(value any) error {
	switch x := value.(type) {
	case uuid.UUID:
		return nil
	case string:
		if _, err := uuid.Parse(x); err == nil {
			return nil
		}
	case fmt.Stringer:
		if _, err := uuid.Parse(x.String()); err == nil {
			return nil
		}
	}
	return invalid("invalid_uuid", "%q is not a valid UUID.", fmt.Sprint(value))
}

// NumberValidator accepts numbers and numeric text.
type NumberValidator struct{}

func (NumberValidator) Validate(value any) error {
	if _, isBool := value.(bool); !isBool && coerce.IsNumber(value) {
		return nil
	}
	if _, err := coerce.Float(value); err != nil {
		return invalid("invalid_number", "A valid number is required.")
	}
	return nil
}

// IntegerValidator accepts values castable to an integer.
type IntegerValidator struct{}

func (IntegerValidator) Validate(value any) error {
	if _, err := coerce.Int(value); err != nil {
		return invalid("invalid_integer", "A valid integer is required.")
	}
	return nil
}

// FloatValidator accepts values castable to a float.
type FloatValidator struct{}

func (FloatValidator) Validate(value any) error {
	if _, err := coerce.Float(value); err != nil {
		return invalid("invalid_float", "A valid float is required.")
	}
	return nil
}

// DecimalValidator accepts values castable to a decimal.
type DecimalValidator struct{}

func (DecimalValidator) Validate(value any) error {
	if _, err := coerce.Decimal(value); err != nil {
		return invalid("invalid_decimal", "A valid decimal is required.")
	}
	return nil
}

// DictValidator accepts key-mappings.
type DictValidator struct{}

func (DictValidator) Validate(value any) error {
	if _, ok := value.(resolve.Keyed); ok {
		return nil
	}
	if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
		return nil
	}
	return invalid("invalid_dict", "Expected a dictionary of items but got %T.", value)
}

// MaxLength rejects text longer than Max runes.
type MaxLength struct {
	Max int
}

func (v MaxLength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(s) > v.Max {
		return invalid("max_length", "Ensure this field has no more than %d characters.", v.Max)
	}
	return nil
}
