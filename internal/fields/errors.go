package fields

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupported is wrapped when a value has a type the kind cannot convert.
var ErrUnsupported = errors.New("unsupported value type")

// CoercionError reports that Value could not be converted by a field of Kind.
type CoercionError struct {
	Kind  Kind
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %#v: %v", e.Kind, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

func unsupported(k Kind, v any) *CoercionError {
	return &CoercionError{Kind: k, Value: v, Err: errors.Wrapf(ErrUnsupported, "%T", v)}
}

// Advisory is the non-fatal signal raised when a field accepted a value of a
// near-miss type and converted it, e.g. a date-time given to a date field.
type Advisory struct {
	Kind    Kind
	Value   any // as received
	Result  any // after conversion
	Message string
}

func (a *Advisory) String() string { return a.Message }
