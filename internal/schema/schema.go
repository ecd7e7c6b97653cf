// Package schema holds the ordered collection of named fields a serializer
// walks. Attaching a field to a schema produces a BoundField; the field
// itself is never modified, so one Field may appear in any number of schemas.
package schema

import (
	"github.com/hanpama/serializer/internal/fields"
	"github.com/hanpama/serializer/internal/ordered"
)

// Schema is an immutable, ordered set of bound fields.
type Schema struct {
	Name        string
	Description string

	fields []*BoundField
	index  map[string]int
}

// BoundField is a Field attached to a Schema under Name.
type BoundField struct {
	Name   string
	Field  *fields.Field
	Schema *Schema
}

// ToNative resolves and converts the field's value from obj.
func (b *BoundField) ToNative(obj any) (any, error) {
	return b.Field.FieldToNative(obj, b.Name)
}

// Fields returns the bound fields in declaration order.
func (s *Schema) Fields() []*BoundField { return append([]*BoundField(nil), s.fields...) }

// Field returns the bound field called name.
func (s *Schema) Field(name string) (*BoundField, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) Len() int { return len(s.fields) }

// Metadata maps each field name to its metadata, in declaration order.
func (s *Schema) Metadata() *ordered.Map {
	out := ordered.New(len(s.fields))
	for _, f := range s.fields {
		out.Set(f.Name, f.Field.Metadata())
	}
	return out
}
