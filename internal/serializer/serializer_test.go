package serializer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
	"github.com/hanpama/serializer/internal/fields"
	"github.com/hanpama/serializer/internal/resolve"
	"github.com/hanpama/serializer/internal/schema"
)

type account struct {
	Name    string
	ID      int
	Created time.Time
	hits    *int
}

func (a account) Hits() int {
	*a.hits++
	return *a.hits
}

func idNameSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder("Account").
		Add("id", fields.Integer()).
		Add("name", fields.Char()).
		Build()
	require.NoError(t, err)
	return s
}

func TestData_ManyKeepsDeclarationOrder(t *testing.T) {
	objs := []any{
		account{Name: "Dr. John Smith", ID: 1},
		map[string]any{"name": "Jane", "id": 2},
	}
	data, err := NewMany(idNameSchema(t), objs).Data()
	require.NoError(t, err)

	out := data.([]*OrderedMap)
	require.Len(t, out, 2)
	for _, m := range out {
		require.Equal(t, []string{"id", "name"}, m.Keys())
	}

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1,"name":"Dr. John Smith"},{"id":2,"name":"Jane"}]`, string(raw))
}

func TestNew_DetectsSequences(t *testing.T) {
	s := idNameSchema(t)
	require.True(t, New(s, []account{{ID: 1}}).Many())
	require.False(t, New(s, account{ID: 1}).Many())
	require.False(t, New(s, map[string]any{"id": 1}).Many())

	_, err := NewSlice(s, account{})
	require.Error(t, err)

	ser, err := NewSlice(s, [2]account{{ID: 1}, {ID: 2}})
	require.NoError(t, err)
	data, err := ser.Data()
	require.NoError(t, err)
	require.Len(t, data, 2)
}

func TestData_Memoized(t *testing.T) {
	s := schema.NewBuilder("Account").Add("hits", fields.Integer()).MustBuild()
	hits := 0
	ser := New(s, account{hits: &hits})

	first, err := ser.Data()
	require.NoError(t, err)
	second, err := ser.Data()
	require.NoError(t, err)

	require.Same(t, first.(*OrderedMap), second.(*OrderedMap))
	require.Equal(t, 1, hits)
	v, _ := first.(*OrderedMap).Get("hits")
	require.Equal(t, 1, v)
}

func TestToNative_Errors(t *testing.T) {
	s := schema.NewBuilder("Account").
		Add("id", fields.Integer()).
		Add("email", fields.Char()).
		MustBuild()
	_, err := New(s, account{ID: 1}).Data()
	require.ErrorIs(t, err, resolve.ErrNoAttribute)
	require.Contains(t, err.Error(), `field "email"`)
	require.Contains(t, err.Error(), "'account' object has no attribute 'email'")

	_, err = NewMany(s, []any{map[string]any{}, account{}}).Data()
	require.Contains(t, err.Error(), "item 1")
}

func TestToNative_NilObjectUsesEmpty(t *testing.T) {
	s := schema.NewBuilder("Account").
		Add("id", fields.Integer(fields.WithEmpty(0))).
		Add("name", fields.Char()).
		MustBuild()
	m, err := New(s, nil).ToNative(nil)
	require.NoError(t, err)
	id, _ := m.Get("id")
	name, _ := m.Get("name")
	require.Equal(t, 0, id)
	require.Equal(t, "", name)
}

func TestData_Events(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var starts, finishes int
	eventbus.Subscribe(func(_ context.Context, e events.ConversionStart) {
		require.Equal(t, events.Outbound, e.Direction)
		require.Equal(t, 2, e.Count)
		starts++
	})
	eventbus.Subscribe(func(_ context.Context, e events.ConversionFinish) {
		require.NoError(t, e.Err)
		finishes++
	})

	ser := NewMany(idNameSchema(t), []any{map[string]any{"id": 1, "name": "a"}, map[string]any{"id": 2, "name": "b"}})
	_, err := ser.Data()
	require.NoError(t, err)
	_, err = ser.Data()
	require.NoError(t, err)
	require.Equal(t, 1, starts)
	require.Equal(t, 1, finishes)
}

func profileSchema() *schema.Schema {
	return schema.NewBuilder("Profile").
		Add("id", fields.UUID()).
		Add("born", fields.Date()).
		Add("seen", fields.DateTime()).
		Add("score", fields.Decimal(fields.WithRequired(false))).
		Add("nick", fields.Char(fields.WithRequired(false))).
		MustBuild()
}

func TestDeserialize(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })
	var published []events.CoercionAdvisory
	eventbus.Subscribe(func(_ context.Context, e events.CoercionAdvisory) { published = append(published, e) })

	in := map[string]any{
		"born":  time.Date(2014, 1, 1, 10, 30, 0, 0, time.UTC),
		"id":    "a3a99fba-ccb5-4616-95b8-205dd0cfb84a",
		"seen":  "2014-01-01T10:30:00Z",
		"score": "",
		"extra": true,
	}
	result, err := Deserialize(context.Background(), profileSchema(), in)
	require.NoError(t, err)

	require.Equal(t, []string{"id", "born", "seen", "score"}, result.Values.Keys())
	id, _ := result.Values.Get("id")
	require.Equal(t, uuid.MustParse("a3a99fba-ccb5-4616-95b8-205dd0cfb84a"), id)
	born, _ := result.Values.Get("born")
	require.Equal(t, civil.Date{Year: 2014, Month: time.January, Day: 1}, born)
	seen, _ := result.Values.Get("seen")
	require.True(t, time.Date(2014, 1, 1, 10, 30, 0, 0, time.UTC).Equal(seen.(time.Time)))
	score, _ := result.Values.Get("score")
	require.Nil(t, score)

	require.Len(t, result.Advisories, 1)
	require.Equal(t, "born", result.Advisories[0].Field)
	require.Equal(t, fields.KindDate, result.Advisories[0].Advisory.Kind)

	require.Len(t, published, 1)
	if diff := cmp.Diff("born", published[0].Field); diff != "" {
		t.Errorf("advisory field (-want +got):\n%s", diff)
	}
	require.Equal(t, "DateField", published[0].Kind)
}

func TestDeserialize_AggregatesFailures(t *testing.T) {
	in := map[string]any{
		"id":    "not-a-uuid",
		"seen":  "",
		"score": "ten",
	}
	result, err := New(profileSchema(), nil).Deserialize(context.Background(), in)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	require.Equal(t, []string{"id", "born", "seen", "score"}, names)
	require.Equal(t, []string{MsgRequired}, verr.Messages("born"))
	require.Equal(t, []string{MsgRequired}, verr.Messages("seen"))
	require.Equal(t, []string{"A valid decimal is required."}, verr.Messages("score"))
	require.Nil(t, verr.Messages("nick"))
	require.Contains(t, err.Error(), "validation failed: id: ")

	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "id", ferr.Field)

	require.NotNil(t, result)
	require.Equal(t, 0, result.Values.Len())
}

func TestDeserialize_RejectsNonMapping(t *testing.T) {
	_, err := Deserialize(context.Background(), profileSchema(), []any{1})
	require.Error(t, err)
}
