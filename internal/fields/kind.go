package fields

import (
	"fmt"

	"github.com/hanpama/serializer/internal/coerce"
	"github.com/hanpama/serializer/internal/constants"
	"github.com/hanpama/serializer/internal/validators"
)

// Kind is the closed set of field variants.
type Kind int

const (
	KindBase Kind = iota
	KindText
	KindDate
	KindDateTime
	KindUUID
	KindNumber
	KindInteger
	KindFloat
	KindDecimal
	KindDict
)

// kindDef is one row of the dispatch table. Functions stored here must not
// reach back into kinds (directly or through Field methods), or package
// initialization becomes cyclic.
type kindDef struct {
	name  string // type_name
	label string // type_label

	// defaultFormat returns the format used when none is configured.
	defaultFormat func(*constants.Table) string
	num           coerce.NumKind
	validators    func(f *Field) []validators.Validator

	toNative   func(f *Field, v any) (any, error)
	fromNative func(f *Field, v any) (any, *Advisory, error)
}

var kinds = [...]kindDef{
	KindBase: {
		name:       "Field",
		toNative:   baseToNative,
		fromNative: identity,
	},
	KindText: {
		name:       "CharField",
		label:      "string",
		toNative:   baseToNative,
		fromNative: identity,
	},
	KindDate: {
		name:          "DateField",
		label:         "date",
		defaultFormat: func(t *constants.Table) string { return t.DateFormat },
		validators: func(f *Field) []validators.Validator {
			return []validators.Validator{validators.DateValidator{Format: f.format, ISO: f.iso}}
		},
		toNative:   dateToNative,
		fromNative: dateFromNative,
	},
	KindDateTime: {
		name:          "DateTimeField",
		label:         "datetime",
		defaultFormat: func(t *constants.Table) string { return t.DateTimeFormat },
		validators: func(f *Field) []validators.Validator {
			return []validators.Validator{validators.DateTimeValidator{Format: f.format, ISO: f.iso}}
		},
		toNative:   dateTimeToNative,
		fromNative: dateTimeFromNative,
	},
	KindUUID: {
		name:       "UUIDField",
		label:      "string",
		validators: only(validators.UUIDValidator{}),
		toNative:   uuidToNative,
		fromNative: uuidFromNative,
	},
	KindNumber: {
		name:       "NumberField",
		label:      "number",
		num:        coerce.NumFloat,
		validators: only(validators.NumberValidator{}),
		toNative:   baseToNative,
		fromNative: numberFromNative,
	},
	KindInteger: {
		name:       "IntegerField",
		label:      "integer",
		num:        coerce.NumInteger,
		validators: only(validators.IntegerValidator{}),
		toNative:   baseToNative,
		fromNative: numberFromNative,
	},
	KindFloat: {
		name:       "FloatField",
		label:      "float",
		num:        coerce.NumFloat,
		validators: only(validators.FloatValidator{}),
		toNative:   baseToNative,
		fromNative: numberFromNative,
	},
	KindDecimal: {
		name:       "DecimalField",
		label:      "decimal",
		num:        coerce.NumDecimal,
		validators: only(validators.DecimalValidator{}),
		toNative:   baseToNative,
		fromNative: numberFromNative,
	},
	KindDict: {
		name:       "DictField",
		label:      "dict",
		validators: only(validators.DictValidator{}),
		toNative:   baseToNative,
		fromNative: dictFromNative,
	},
}

func only(v validators.Validator) func(*Field) []validators.Validator {
	return func(*Field) []validators.Validator { return []validators.Validator{v} }
}

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool { return k >= 0 && int(k) < len(kinds) }

// String returns the type name, e.g. "DateField".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Label returns the type label, e.g. "date". The base kind has none.
func (k Kind) Label() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].label
}

// ParseKind maps a type name ("DateField") or a short name ("date") to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k := range kinds {
		if kinds[k].name == name {
			return Kind(k), true
		}
	}
	k, ok := shortNames[name]
	return k, ok
}

var shortNames = map[string]Kind{
	"field":    KindBase,
	"char":     KindText,
	"string":   KindText,
	"date":     KindDate,
	"datetime": KindDateTime,
	"uuid":     KindUUID,
	"number":   KindNumber,
	"integer":  KindInteger,
	"float":    KindFloat,
	"decimal":  KindDecimal,
	"dict":     KindDict,
}

func identity(_ *Field, v any) (any, *Advisory, error) { return v, nil, nil }

// baseToNative flattens v. Field.ToNative has already invoked it.
func baseToNative(_ *Field, v any) (any, error) { return flatten(v) }

func numberFromNative(f *Field, v any) (any, *Advisory, error) {
	if f.consts.IsEmpty(v) {
		return nil, nil, nil
	}
	n, err := coerce.Number(v, f.num)
	if err != nil {
		return nil, nil, &CoercionError{Kind: f.kind, Value: v, Err: err}
	}
	return n, nil, nil
}

func dictFromNative(f *Field, v any) (any, *Advisory, error) {
	if f.consts.IsEmpty(v) {
		return nil, nil, nil
	}
	return v, nil, nil
}
