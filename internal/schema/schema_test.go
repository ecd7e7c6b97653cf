package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/serializer/internal/fields"
)

func personSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewBuilder("Person").
		SetDescription("A person.").
		Add("id", fields.Integer()).
		Add("name", fields.Char(fields.WithSource("profile.name"), fields.WithLabel("Name"), fields.WithRequired(false))).
		Add("born", fields.Date(fields.WithHelpText("Birthday"))).
		Build()
	require.NoError(t, err)
	return s
}

func TestBuild_DeclarationOrder(t *testing.T) {
	s := personSchema(t)
	require.Equal(t, []string{"id", "name", "born"}, s.Names())
	require.Equal(t, 3, s.Len())

	for _, bf := range s.Fields() {
		require.Same(t, s, bf.Schema)
	}
	name, ok := s.Field("name")
	require.True(t, ok)
	require.Equal(t, "profile.name", name.Field.Source())

	_, ok = s.Field("missing")
	require.False(t, ok)
}

func TestBuild_Rejects(t *testing.T) {
	_, err := NewBuilder("T").Add("a", fields.Char()).Add("a", fields.Integer()).Build()
	require.ErrorIs(t, err, ErrDuplicateField)

	_, err = NewBuilder("T").Add("", fields.Char()).Build()
	require.ErrorIs(t, err, ErrInvalidField)

	_, err = NewBuilder("T").Add("a", nil).Build()
	require.ErrorIs(t, err, ErrInvalidField)

	require.Panics(t, func() { NewBuilder("T").Add("a", nil).MustBuild() })
}

func TestBuild_SharedField(t *testing.T) {
	shared := fields.Char()
	a := NewBuilder("A").Add("title", shared).MustBuild()
	b := NewBuilder("B").Add("heading", shared).MustBuild()

	fa, _ := a.Field("title")
	fb, _ := b.Field("heading")
	require.Same(t, fa.Field, fb.Field)
	require.NotSame(t, fa, fb)

	obj := map[string]any{"title": "x", "heading": "y"}
	va, err := fa.ToNative(obj)
	require.NoError(t, err)
	vb, err := fb.ToNative(obj)
	require.NoError(t, err)
	require.Equal(t, "x", va)
	require.Equal(t, "y", vb)
}

func TestMetadata(t *testing.T) {
	md := personSchema(t).Metadata()
	require.Equal(t, []string{"id", "name", "born"}, md.Keys())
	v, _ := md.Get("name")
	require.Equal(t, fields.Metadata{Type: "string", TypeName: "CharField", Label: "Name"}, v)
}

func TestRender(t *testing.T) {
	want := FieldDirective + `

"""
A calendar date rendered with the field's format.
"""
scalar Date

"""
A person.
"""
type Person {
  id: Int!
  name: String @field(source: "profile.name", label: "Name")
  """
  Birthday
  """
  born: Date! @field(format: "%Y-%m-%d")
}
`
	if diff := cmp.Diff(want, Render(personSchema(t))); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestScalars(t *testing.T) {
	sc, ok := LookupScalar("ID")
	require.True(t, ok)
	require.Equal(t, fields.KindText, sc.Kind)

	require.Equal(t, "Any", ScalarFor(fields.KindBase).Name)
	require.Equal(t, "String", ScalarFor(fields.KindText).Name)
	require.Equal(t, "JSON", ScalarFor(fields.KindDict).Name)
	require.Equal(t, "Decimal", ScalarFor(fields.KindDecimal).Name)
}
