// Package fields defines Field, the typed descriptor that resolves one named
// value out of a source object and converts it between its typed form and its
// native (JSON-safe) representation.
//
// A Field is immutable once constructed and may be shared freely between
// schemas and goroutines.
package fields

import (
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/hanpama/serializer/internal/coerce"
	"github.com/hanpama/serializer/internal/constants"
	"github.com/hanpama/serializer/internal/resolve"
	"github.com/hanpama/serializer/internal/validators"
)

var defaultConstants = constants.Default()

// Field is a typed field descriptor. Create one with New or a kind
// constructor such as Date.
type Field struct {
	kind     Kind
	source   string
	label    string
	helpText string
	required bool
	empty    any

	format string
	iso    bool
	num    coerce.NumKind
	consts *constants.Table

	validators []validators.Validator
}

// Option configures a Field under construction.
type Option func(*Field)

// WithSource sets the dotted source path, e.g. "version.name".
func WithSource(path string) Option { return func(f *Field) { f.source = path } }

func WithLabel(label string) Option { return func(f *Field) { f.label = label } }

func WithHelpText(text string) Option { return func(f *Field) { f.helpText = text } }

// WithRequired controls whether a missing source attribute is an error.
// Fields are required by default.
func WithRequired(required bool) Option { return func(f *Field) { f.required = required } }

// WithValidators appends validators after the kind's defaults.
func WithValidators(vs ...validators.Validator) Option {
	return func(f *Field) { f.validators = append(f.validators, vs...) }
}

// WithEmpty sets the value returned when the source object is nil.
func WithEmpty(v any) Option { return func(f *Field) { f.empty = v } }

// WithFormat sets the date or date-time format: a strftime pattern or the
// ISO-8601 marker.
func WithFormat(format string) Option { return func(f *Field) { f.format = format } }

// WithConstants replaces the default constant table.
func WithConstants(t *constants.Table) Option {
	return func(f *Field) {
		if t != nil {
			f.consts = t
		}
	}
}

// New returns a Field of the given kind. It panics on an unknown kind.
func New(kind Kind, opts ...Option) *Field {
	if !kind.Valid() {
		panic(errors.Errorf("fields: unknown kind %d", int(kind)))
	}
	def := &kinds[kind]
	f := &Field{
		kind:     kind,
		required: true,
		empty:    "",
		num:      def.num,
		consts:   defaultConstants,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.format == "" && def.defaultFormat != nil {
		f.format = def.defaultFormat(f.consts)
	}
	f.iso = f.format != "" && f.consts.IsISO8601(f.format)

	user := f.validators
	f.validators = nil
	if def.validators != nil {
		f.validators = def.validators(f)
	}
	f.validators = append(f.validators, user...)
	return f
}

func Base(opts ...Option) *Field     { return New(KindBase, opts...) }
func Char(opts ...Option) *Field     { return New(KindText, opts...) }
func Date(opts ...Option) *Field     { return New(KindDate, opts...) }
func DateTime(opts ...Option) *Field { return New(KindDateTime, opts...) }
func UUID(opts ...Option) *Field     { return New(KindUUID, opts...) }
func Number(opts ...Option) *Field   { return New(KindNumber, opts...) }
func Integer(opts ...Option) *Field  { return New(KindInteger, opts...) }
func Float(opts ...Option) *Field    { return New(KindFloat, opts...) }
func Decimal(opts ...Option) *Field  { return New(KindDecimal, opts...) }
func Dict(opts ...Option) *Field     { return New(KindDict, opts...) }

func (f *Field) Kind() Kind         { return f.kind }
func (f *Field) Source() string     { return f.source }
func (f *Field) Label() string      { return f.label }
func (f *Field) HelpText() string   { return f.helpText }
func (f *Field) Required() bool     { return f.required }
func (f *Field) Empty() any         { return f.empty }
func (f *Field) Format() string     { return f.format }
func (f *Field) TypeName() string   { return f.kind.String() }
func (f *Field) TypeLabel() string  { return f.kind.Label() }
func (f *Field) IsEmpty(v any) bool { return f.consts.IsEmpty(v) }

// Validators returns the validator chain: kind defaults first, then the
// validators given at construction.
func (f *Field) Validators() []validators.Validator {
	return append([]validators.Validator(nil), f.validators...)
}

// FieldToNative resolves the field's value from obj and converts it to its
// native representation. The path is the field's source, or fieldName when
// no source is set; dotted paths are resolved segment by segment.
//
// A nil obj yields the field's empty value. A missing attribute yields nil
// for optional fields and an error wrapping *resolve.Error otherwise.
func (f *Field) FieldToNative(obj any, fieldName string) (any, error) {
	if isNil(obj) {
		return f.empty, nil
	}
	path := f.source
	if path == "" {
		path = fieldName
	}
	value, err := resolve.Path(obj, path)
	if err != nil {
		if !f.required && errors.Is(err, resolve.ErrNoAttribute) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "resolve %q", path)
	}
	return f.ToNative(value)
}

// ToNative converts a resolved value to its native representation.
// Zero-argument funcs are invoked first and their result converted.
func (f *Field) ToNative(value any) (any, error) {
	v, err := invoke(value)
	if err != nil {
		return nil, err
	}
	return kinds[f.kind].toNative(f, v)
}

// FromNative converts an external value to the field's typed value. A
// near-miss input that was still converted is reported through the returned
// Advisory; it is not an error.
func (f *Field) FromNative(value any) (any, *Advisory, error) {
	return kinds[f.kind].fromNative(f, value)
}

// Validate runs every validator and combines their failures.
func (f *Field) Validate(value any) error {
	var err error
	for _, v := range f.validators {
		err = multierr.Append(err, v.Validate(value))
	}
	return err
}

// Metadata describes a field for documentation output.
type Metadata struct {
	Type     string `json:"type" yaml:"type"`
	TypeName string `json:"type_name" yaml:"type_name"`
	Required bool   `json:"required" yaml:"required"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	HelpText string `json:"help_text,omitempty" yaml:"help_text,omitempty"`
}

func (f *Field) Metadata() Metadata {
	return Metadata{
		Type:     f.TypeLabel(),
		TypeName: f.TypeName(),
		Required: f.required,
		Label:    f.label,
		HelpText: f.helpText,
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
