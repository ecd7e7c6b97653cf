package fields

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/hanpama/serializer/internal/ordered"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invoke calls v when it is a func taking no arguments and returning either
// one value or a value and an error. Anything else is returned as is.
func invoke(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return v, nil
	}
	t := rv.Type()
	if t.NumIn() != 0 {
		return v, nil
	}
	switch {
	case t.NumOut() == 1:
		return rv.Call(nil)[0].Interface(), nil
	case t.NumOut() == 2 && t.Out(1) == errorType:
		out := rv.Call(nil)
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, errors.Wrap(err, "compute value")
		}
		return out[0].Interface(), nil
	}
	return v, nil
}

// nativeValue invokes v when it is a zero-argument func, then flattens the
// result.
func nativeValue(v any) (any, error) {
	v, err := invoke(v)
	if err != nil {
		return nil, err
	}
	return flatten(v)
}

// flatten converts v without invoking it: sequences become []any, mappings
// become map[string]any (or *ordered.Map when v is ordered), proto messages
// become their JSON form, pointers are followed. Elements go through
// nativeValue.
func flatten(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, []byte, bool, json.Number,
		time.Time, civil.Date, civil.DateTime, civil.Time,
		uuid.UUID, decimal.Decimal:
		return v, nil
	case *ordered.Map:
		return nativeOrdered(x)
	case proto.Message:
		return nativeProto(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return flatten(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			item, err := nativeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = item
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := mapKey(iter.Key())
			item, err := nativeValue(iter.Value().Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", key)
			}
			out[key] = item
		}
		return out, nil
	}
	return v, nil
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func nativeOrdered(m *ordered.Map) (any, error) {
	out := ordered.New(m.Len())
	var err error
	m.Range(func(key string, item any) bool {
		var n any
		if n, err = nativeValue(item); err != nil {
			err = errors.Wrapf(err, "key %q", key)
			return false
		}
		out.Set(key, n)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var protoJSON = protojson.MarshalOptions{UseProtoNames: true}

// nativeProto renders a message through its canonical JSON mapping, keeping
// field order.
func nativeProto(m proto.Message) (any, error) {
	if !m.ProtoReflect().IsValid() {
		return nil, nil
	}
	data, err := protoJSON.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s", m.ProtoReflect().Descriptor().FullName())
	}
	return ordered.Decode(data)
}
