package fields

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/hanpama/serializer/internal/coerce"
)

// indirect follows non-nil pointers; a nil pointer becomes nil.
func indirect(v any) any {
	switch x := v.(type) {
	case *timestamppb.Timestamp:
		if x == nil {
			return nil
		}
		return x
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func dateToNative(f *Field, v any) (any, error) {
	v = indirect(v)
	if v == nil || f.format == "" {
		return v, nil
	}
	var d civil.Date
	switch x := v.(type) {
	case civil.Date:
		d = x
	case civil.DateTime:
		d = x.Date
	case time.Time:
		d = civil.DateOf(x)
	case *timestamppb.Timestamp:
		d = civil.DateOf(x.AsTime())
	case string:
		parsed, err := coerce.ParseDate(x, f.format, f.iso)
		if err != nil {
			return nil, &CoercionError{Kind: f.kind, Value: v, Err: err}
		}
		d = parsed
	default:
		return nil, unsupported(f.kind, v)
	}
	if f.iso {
		return d.String(), nil
	}
	return coerce.FormatDate(d, f.format), nil
}

func dateFromNative(f *Field, v any) (any, *Advisory, error) {
	if f.consts.IsEmpty(v) {
		return nil, nil, nil
	}
	var (
		d     civil.Date
		given string
	)
	switch x := indirect(v).(type) {
	case civil.Date:
		return x, nil, nil
	case civil.DateTime:
		d, given = x.Date, x.String()
	case time.Time:
		d, given = civil.DateOf(x), coerce.ISODateTime(x)
	case *timestamppb.Timestamp:
		t := x.AsTime()
		d, given = civil.DateOf(t), coerce.ISODateTime(t)
	case string:
		d, err := coerce.ParseDate(x, f.format, f.iso)
		if err != nil {
			return nil, nil, &CoercionError{Kind: f.kind, Value: v, Err: err}
		}
		return d, nil, nil
	default:
		return nil, nil, unsupported(f.kind, v)
	}
	return d, &Advisory{
		Kind:    f.kind,
		Value:   v,
		Result:  d,
		Message: fmt.Sprintf("DateField received a datetime (%s); the time of day was dropped.", given),
	}, nil
}

func dateTimeToNative(f *Field, v any) (any, error) {
	v = indirect(v)
	if v == nil || f.format == "" {
		return v, nil
	}
	switch x := v.(type) {
	case time.Time:
		if f.iso {
			return utcSuffix(coerce.ISODateTime(x)), nil
		}
		return coerce.FormatTime(x, f.format), nil
	case *timestamppb.Timestamp:
		t := x.AsTime()
		if f.iso {
			return utcSuffix(coerce.ISODateTime(t)), nil
		}
		return coerce.FormatTime(t, f.format), nil
	case civil.DateTime:
		if f.iso {
			return coerce.ISOCivilDateTime(x), nil
		}
		return coerce.FormatTime(x.In(time.UTC), f.format), nil
	case civil.Date:
		if f.iso {
			return x.String(), nil
		}
		return coerce.FormatDate(x, f.format), nil
	case string:
		// already native text; normalized through the configured format
		t, err := parseDateTime(f, x)
		if err != nil {
			return nil, err
		}
		return dateTimeToNative(f, t)
	}
	return nil, unsupported(f.kind, v)
}

// utcSuffix writes a zero UTC offset as "Z".
func utcSuffix(s string) string {
	if strings.HasSuffix(s, "+00:00") {
		return s[:len(s)-len("+00:00")] + "Z"
	}
	return s
}

func dateTimeFromNative(f *Field, v any) (any, *Advisory, error) {
	if f.consts.IsEmpty(v) {
		return nil, nil, nil
	}
	switch x := indirect(v).(type) {
	case time.Time:
		return x, nil, nil
	case civil.DateTime:
		return x, nil, nil
	case *timestamppb.Timestamp:
		return x.AsTime(), nil, nil
	case civil.Date:
		t := x.In(time.UTC)
		return t, &Advisory{
			Kind:    f.kind,
			Value:   v,
			Result:  t,
			Message: fmt.Sprintf("DateTimeField received a date (%s); it was converted to midnight UTC.", x),
		}, nil
	case string:
		t, err := parseDateTime(f, x)
		if err != nil {
			return nil, nil, err
		}
		return t, nil, nil
	}
	return nil, nil, unsupported(f.kind, v)
}

// parseDateTime parses text with the field format. Text without a UTC offset
// yields a civil.DateTime, anything else a time.Time.
func parseDateTime(f *Field, text string) (any, error) {
	t, naive, err := coerce.ParseDateTime(text, f.format, f.iso)
	if err != nil {
		return nil, &CoercionError{Kind: f.kind, Value: text, Err: err}
	}
	if naive {
		return civil.DateTimeOf(t), nil
	}
	return t, nil
}

func uuidToNative(_ *Field, v any) (any, error) {
	switch x := indirect(v).(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case uuid.UUID:
		return x.String(), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return fmt.Sprint(x), nil
	}
}

func uuidFromNative(f *Field, v any) (any, *Advisory, error) {
	if f.consts.IsEmpty(v) {
		return nil, nil, nil
	}
	var text string
	switch x := indirect(v).(type) {
	case uuid.UUID:
		return x, nil, nil
	case [16]byte:
		return uuid.UUID(x), nil, nil
	case string:
		text = x
	case fmt.Stringer:
		text = x.String()
	default:
		text = fmt.Sprint(x)
	}
	id, err := uuid.Parse(text)
	if err != nil {
		return nil, nil, &CoercionError{Kind: f.kind, Value: v, Err: err}
	}
	return id, nil, nil
}
