// Package ordered provides a string-keyed mapping that remembers insertion
// order and keeps it through JSON encoding and decoding.
package ordered

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Map is an insertion-ordered mapping. The zero value is ready to use.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map with room for capacity keys.
func New(capacity int) *Map {
	return &Map{keys: make([]string, 0, capacity), values: make(map[string]any, capacity)}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (m *Map) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Lookup is Get; it makes Map a key-mapping for attribute resolution.
func (m *Map) Lookup(key string) (any, bool) { return m.Get(key) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for every entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// ToMap returns an unordered copy.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, k := range m.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k)
		stream.WriteVal(m.values[k])
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "encode ordered map")
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// UnmarshalJSON decodes a JSON object keeping document key order. Nested
// objects decode as *Map and numbers as json.Number.
func (m *Map) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return errors.New("ordered: expected a JSON object")
	}
	v := readValue(iter)
	if iter.Error != nil {
		return errors.Wrap(iter.Error, "decode ordered map")
	}
	*m = *v.(*Map)
	return nil
}

// Decode reads any JSON document, decoding objects as *Map.
func Decode(data []byte) (any, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	v := readValue(iter)
	if iter.Error != nil {
		return nil, errors.Wrap(iter.Error, "decode json")
	}
	return v, nil
}

func readValue(iter *jsoniter.Iterator) any {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		out := New(0)
		iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
			out.Set(key, readValue(it))
			return it.Error == nil
		})
		return out
	case jsoniter.ArrayValue:
		out := []any{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			out = append(out, readValue(it))
			return it.Error == nil
		})
		return out
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadNumber()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	}
	iter.ReportError("decode", "unexpected token")
	return nil
}
