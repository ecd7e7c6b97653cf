package schema

import "github.com/hanpama/serializer/internal/fields"

// Scalar is a GraphQL scalar name mapped onto a field kind.
type Scalar struct {
	Name        string
	Kind        fields.Kind
	Description string
	Builtin     bool // defined by GraphQL itself, never declared in SDL
}

// Scalars lists every scalar a schema declaration may use. The first entry
// for a kind is the one Render emits.
var Scalars = []Scalar{
	{Name: "String", Kind: fields.KindText, Builtin: true,
		Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences."},
	{Name: "ID", Kind: fields.KindText, Builtin: true},
	{Name: "Int", Kind: fields.KindInteger, Builtin: true,
		Description: "The `Int` scalar type represents non-fractional signed whole numeric values."},
	{Name: "Float", Kind: fields.KindFloat, Builtin: true,
		Description: "The `Float` scalar type represents signed double-precision fractional values."},
	{Name: "Boolean", Kind: fields.KindBase, Builtin: true},
	{Name: "Any", Kind: fields.KindBase,
		Description: "Any value, flattened into lists and maps as found."},
	{Name: "Date", Kind: fields.KindDate,
		Description: "A calendar date rendered with the field's format."},
	{Name: "DateTime", Kind: fields.KindDateTime,
		Description: "A date-time rendered with the field's format; ISO-8601 by default."},
	{Name: "UUID", Kind: fields.KindUUID,
		Description: "A UUID in canonical textual form."},
	{Name: "Number", Kind: fields.KindNumber,
		Description: "A number, parsed as floating point."},
	{Name: "Decimal", Kind: fields.KindDecimal,
		Description: "An arbitrary-precision decimal number."},
	{Name: "JSON", Kind: fields.KindDict,
		Description: "A key-value mapping."},
	{Name: "Dict", Kind: fields.KindDict},
}

// LookupScalar returns the scalar called name.
func LookupScalar(name string) (Scalar, bool) {
	for _, s := range Scalars {
		if s.Name == name {
			return s, true
		}
	}
	return Scalar{}, false
}

// ScalarFor returns the scalar Render uses for kind. Base fields render as
// Any rather than Boolean.
func ScalarFor(kind fields.Kind) Scalar {
	if kind != fields.KindBase {
		for _, s := range Scalars {
			if s.Kind == kind {
				return s
			}
		}
	}
	s, _ := LookupScalar("Any")
	return s
}
