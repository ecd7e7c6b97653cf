// Package sdl builds schemas from object types declared in GraphQL SDL.
//
//	"""An account holder."""
//	type Person {
//	  id: UUID!
//	  "Shown on the profile page."
//	  name: String @field(source: "profile.display_name", label: "Name")
//	  born: Date @field(format: "%d/%m/%Y")
//	}
//
// Each field's scalar selects its kind (see schema.Scalars), a non-null type
// makes it required, and the description becomes its help text. The @field
// directive sets source, label, format, empty and may override required.
// List types and object types flatten as base fields; enums are text.
package sdl

import (
	"github.com/pkg/errors"

	"github.com/hanpama/serializer/internal/fields"
	"github.com/hanpama/serializer/internal/language"
	"github.com/hanpama/serializer/internal/schema"
)

var (
	ErrUnknownType = errors.New("unknown type")
	ErrNotObject   = errors.New("not an object type")
	ErrDirective   = errors.New("invalid @field directive")
)

// Build parses source and returns the schema of the object type typeName.
// opts apply to every field before the declared configuration.
func Build(source, typeName string, opts ...fields.Option) (*schema.Schema, error) {
	doc, err := language.ParseSchema("schema.graphql", source)
	if err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}
	return FromDocument(doc, typeName, opts...)
}

// BuildAll returns a schema for every object type in source, in document
// order.
func BuildAll(source string, opts ...fields.Option) ([]*schema.Schema, error) {
	doc, err := language.ParseSchema("schema.graphql", source)
	if err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}
	return Objects(doc, opts...)
}

// Objects builds a schema for every object type of a parsed document.
func Objects(doc *language.SchemaDocument, opts ...fields.Option) ([]*schema.Schema, error) {
	var out []*schema.Schema
	for _, def := range doc.Definitions {
		if def.Kind != language.Object {
			continue
		}
		s, err := buildObject(doc, def, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FromDocument builds the schema of typeName from a parsed document.
func FromDocument(doc *language.SchemaDocument, typeName string, opts ...fields.Option) (*schema.Schema, error) {
	def := doc.Definitions.ForName(typeName)
	if def == nil {
		return nil, errors.Wrapf(ErrUnknownType, "%s", typeName)
	}
	if def.Kind != language.Object {
		return nil, errors.Wrapf(ErrNotObject, "%s is %s", typeName, def.Kind)
	}
	return buildObject(doc, def, opts)
}

func buildObject(doc *language.SchemaDocument, def *language.Definition, opts []fields.Option) (*schema.Schema, error) {
	b := schema.NewBuilder(def.Name).SetDescription(def.Description)
	for _, fd := range def.Fields {
		f, err := buildField(doc, fd, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s at %s", def.Name, fd.Name, language.PositionOf(fd.Position))
		}
		b.Add(fd.Name, f)
	}
	return b.Build()
}

func buildField(doc *language.SchemaDocument, fd *language.FieldDefinition, opts []fields.Option) (*fields.Field, error) {
	kind, err := kindOf(doc, fd.Type)
	if err != nil {
		return nil, err
	}
	o := append([]fields.Option(nil), opts...)
	o = append(o, fields.WithRequired(fd.Type.NonNull))
	if fd.Description != "" {
		o = append(o, fields.WithHelpText(fd.Description))
	}

	if d := fd.Directives.ForName("field"); d != nil {
		for _, arg := range d.Arguments {
			opt, err := directiveOption(kind, arg)
			if err != nil {
				return nil, err
			}
			o = append(o, opt)
		}
	}
	return fields.New(kind, o...), nil
}

func kindOf(doc *language.SchemaDocument, t *language.Type) (fields.Kind, error) {
	if t.Elem != nil {
		return fields.KindBase, nil
	}
	if sc, ok := schema.LookupScalar(t.NamedType); ok {
		return sc.Kind, nil
	}
	def := doc.Definitions.ForName(t.NamedType)
	if def == nil {
		return 0, errors.Wrapf(ErrUnknownType, "%s", t.NamedType)
	}
	if def.Kind == language.Enum {
		return fields.KindText, nil
	}
	return fields.KindBase, nil
}

func directiveOption(kind fields.Kind, arg *language.Argument) (fields.Option, error) {
	if arg.Name == "required" {
		if arg.Value.Kind != language.BooleanValue {
			return nil, errors.Wrapf(ErrDirective, "required must be a Boolean, got %s", arg.Value.Raw)
		}
		return fields.WithRequired(arg.Value.Raw == "true"), nil
	}

	if arg.Value.Kind != language.StringValue && arg.Value.Kind != language.BlockValue {
		return nil, errors.Wrapf(ErrDirective, "%s must be a String, got %s", arg.Name, arg.Value.Raw)
	}
	s := arg.Value.Raw
	switch arg.Name {
	case "source":
		return fields.WithSource(s), nil
	case "label":
		return fields.WithLabel(s), nil
	case "empty":
		return fields.WithEmpty(s), nil
	case "format":
		if kind != fields.KindDate && kind != fields.KindDateTime {
			return nil, errors.Wrapf(ErrDirective, "format does not apply to %s", kind)
		}
		return fields.WithFormat(s), nil
	}
	return nil, errors.Wrapf(ErrDirective, "unknown argument %q", arg.Name)
}
