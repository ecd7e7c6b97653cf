// Package serializer applies a schema to one source object or a sequence of
// them, producing ordered native mappings, and runs the inbound pipeline that
// turns native values back into typed ones.
package serializer

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
	"github.com/hanpama/serializer/internal/ordered"
	"github.com/hanpama/serializer/internal/reqid"
	"github.com/hanpama/serializer/internal/schema"
)

// OrderedMap is the output mapping; keys follow schema declaration order.
type OrderedMap = ordered.Map

// Serializer wraps a schema and its source data. The converted data is
// computed once, on the first call to Data.
type Serializer struct {
	schema *schema.Schema
	source any
	items  []any
	many   bool

	once sync.Once
	data any
	err  error
}

// New wraps source. A slice or array source (other than []byte) is treated
// as a sequence of objects.
func New(s *schema.Schema, source any) *Serializer {
	if items, ok := sequence(source); ok {
		return NewMany(s, items)
	}
	return &Serializer{schema: s, source: source}
}

// NewMany wraps an ordered sequence of objects.
func NewMany(s *schema.Schema, objs []any) *Serializer {
	return &Serializer{schema: s, items: objs, many: true}
}

// NewSlice wraps the elements of a typed slice or array.
func NewSlice(s *schema.Schema, slice any) (*Serializer, error) {
	items, ok := sequence(slice)
	if !ok {
		return nil, errors.Errorf("serializer: %T is not a slice", slice)
	}
	return NewMany(s, items), nil
}

func sequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return x, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func (s *Serializer) Schema() *schema.Schema { return s.schema }

// Many reports whether the serializer wraps a sequence.
func (s *Serializer) Many() bool { return s.many }

// ToNative converts one object: every bound field, in declaration order.
func (s *Serializer) ToNative(obj any) (*OrderedMap, error) {
	fs := s.schema.Fields()
	out := ordered.New(len(fs))
	for _, f := range fs {
		v, err := f.ToNative(obj)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Name)
		}
		out.Set(f.Name, v)
	}
	return out, nil
}

// Data returns the converted source: an *OrderedMap for a single object or
// a []*OrderedMap in input order for a sequence.
func (s *Serializer) Data() (any, error) {
	return s.DataContext(context.Background())
}

// DataContext is Data with conversion events published under ctx. Events are
// only published by the call that performs the conversion.
func (s *Serializer) DataContext(ctx context.Context) (any, error) {
	s.once.Do(func() {
		ctx, _ := reqid.Ensure(ctx)
		count := 1
		if s.many {
			count = len(s.items)
		}
		eventbus.Publish(ctx, events.ConversionStart{Schema: s.schema.Name, Direction: events.Outbound, Count: count})
		start := time.Now()

		s.data, s.err = s.convert()

		eventbus.Publish(ctx, events.ConversionFinish{
			Schema:    s.schema.Name,
			Direction: events.Outbound,
			Count:     count,
			Err:       s.err,
			Duration:  time.Since(start),
		})
	})
	return s.data, s.err
}

func (s *Serializer) convert() (any, error) {
	if !s.many {
		m, err := s.ToNative(s.source)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	out := make([]*OrderedMap, len(s.items))
	for i, obj := range s.items {
		m, err := s.ToNative(obj)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		out[i] = m
	}
	return out, nil
}
