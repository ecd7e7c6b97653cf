// Package resolve reads named attributes out of host values.
//
// A container is one of:
//   - a key-mapping: any map with string-kind keys, or a Keyed value. Absent
//     keys resolve to nil without error.
//   - a protobuf message: fields are matched by proto name, then JSON name.
//   - a record: any other non-nil Go value. Struct fields and methods are
//     matched by name (see Resolve). Absent attributes are an *Error.
package resolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoAttribute matches every resolution failure via errors.Is.
var ErrNoAttribute = errors.New("resolve: no such attribute")

// Error reports that Name could not be read from a container of type Container.
type Error struct {
	Name      string
	Container string
}

func (e *Error) Error() string {
	return fmt.Sprintf("'%s' object has no attribute '%s'", e.Container, e.Name)
}

func (e *Error) Is(target error) bool { return target == ErrNoAttribute }

// Keyed is implemented by ordered mappings that want key-mapping semantics.
type Keyed interface {
	Lookup(key string) (any, bool)
}

// Resolve returns the attribute name of container.
//
// Record lookup tries, in order: a `serializer` struct tag, a `json` struct
// tag, the exact field name, and finally a case-insensitive match that ignores
// underscores ("first_name" finds FirstName). Methods are matched by the same
// name rules after fields; a matched method is returned as a bound func value,
// so zero-argument methods behave as computed properties once converted.
func Resolve(container any, name string) (any, error) {
	switch c := container.(type) {
	case nil:
		return nil, &Error{Name: name, Container: "nil"}
	case map[string]any:
		return c[name], nil
	case Keyed:
		v, _ := c.Lookup(name)
		return v, nil
	}
	if v, ok, handled := resolveProto(container, name); handled {
		if !ok {
			return nil, &Error{Name: name, Container: typeName(reflect.TypeOf(container))}
		}
		return v, nil
	}

	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Map {
		return resolveMap(rv, name), nil
	}
	if v, ok := resolveRecord(rv, name); ok {
		return v, nil
	}
	return nil, &Error{Name: name, Container: typeName(rv.Type())}
}

// Path resolves a dotted path left to right: the first segment against root,
// each further segment against the previous result. The returned *Error names
// the segment that failed.
func Path(root any, path string) (any, error) {
	value := root
	for _, segment := range strings.Split(path, ".") {
		v, err := Resolve(value, segment)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return value, nil
}

func resolveMap(rv reflect.Value, name string) any {
	kt := rv.Type().Key()
	if kt.Kind() != reflect.String {
		return nil
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func resolveRecord(rv reflect.Value, name string) (any, bool) {
	outer := rv
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map {
		return resolveMap(rv, name), true
	}

	if rv.Kind() == reflect.Struct {
		if idx := lookupField(rv.Type(), name); idx != nil {
			f, err := rv.FieldByIndexErr(idx)
			if err != nil {
				// nil embedded pointer on the way to a promoted field
				return nil, false
			}
			return f.Interface(), true
		}
	}
	for _, v := range []reflect.Value{outer, rv} {
		if i := lookupMethod(v.Type(), name); i >= 0 {
			return v.Method(i).Interface(), true
		}
	}
	return nil, false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
