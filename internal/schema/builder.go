package schema

import (
	"github.com/pkg/errors"

	"github.com/hanpama/serializer/internal/fields"
)

var (
	ErrDuplicateField = errors.New("duplicate field name")
	ErrInvalidField   = errors.New("invalid field")
)

type entry struct {
	name  string
	field *fields.Field
}

// Builder collects named fields in declaration order. Binding happens in
// Build, which is the only place a BoundField is created.
type Builder struct {
	name        string
	description string
	entries     []entry
}

func NewBuilder(name string) *Builder { return &Builder{name: name} }

func (b *Builder) SetDescription(desc string) *Builder {
	b.description = desc
	return b
}

// Add appends a field under name.
func (b *Builder) Add(name string, f *fields.Field) *Builder {
	b.entries = append(b.entries, entry{name: name, field: f})
	return b
}

// Build binds every field and returns the schema. Empty names, nil fields and
// duplicate names are rejected.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		Name:        b.name,
		Description: b.description,
		fields:      make([]*BoundField, 0, len(b.entries)),
		index:       make(map[string]int, len(b.entries)),
	}
	for _, e := range b.entries {
		if e.name == "" {
			return nil, errors.Wrap(ErrInvalidField, "field name is empty")
		}
		if e.field == nil {
			return nil, errors.Wrapf(ErrInvalidField, "field %q is nil", e.name)
		}
		if _, dup := s.index[e.name]; dup {
			return nil, errors.Wrapf(ErrDuplicateField, "%s.%s", b.name, e.name)
		}
		s.index[e.name] = len(s.fields)
		s.fields = append(s.fields, &BoundField{Name: e.name, Field: e.field, Schema: s})
	}
	return s, nil
}

// MustBuild is Build that panics on error. Intended for schemas declared at
// package level.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
