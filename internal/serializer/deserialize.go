package serializer

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
	"github.com/hanpama/serializer/internal/fields"
	"github.com/hanpama/serializer/internal/ordered"
	"github.com/hanpama/serializer/internal/reqid"
	"github.com/hanpama/serializer/internal/resolve"
	"github.com/hanpama/serializer/internal/schema"
)

// MsgRequired is reported for a required field with no value.
const MsgRequired = "This field is required."

// Result holds the typed values of an inbound conversion.
type Result struct {
	// Values maps field names to typed values in declaration order. Optional
	// fields absent from the input are left out.
	Values     *OrderedMap
	Advisories []FieldAdvisory
}

// FieldAdvisory is an advisory raised while converting the named field.
type FieldAdvisory struct {
	Field    string
	Advisory *fields.Advisory
}

// FieldError lists the failures of one field.
type FieldError struct {
	Field    string
	Messages []string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + strings.Join(e.Messages, " ")
}

// ValidationError is returned when one or more fields failed.
type ValidationError struct {
	Fields []*FieldError // declaration order
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// Messages returns the failures recorded for field.
func (e *ValidationError) Messages(field string) []string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Messages
		}
	}
	return nil
}

// Deserialize runs the inbound pipeline over data with s's schema.
func (s *Serializer) Deserialize(ctx context.Context, data any) (*Result, error) {
	return Deserialize(ctx, s.schema, data)
}

// Deserialize converts a key-mapping of native values into typed values.
// For every field, in declaration order: a missing or empty value is an
// error when the field is required; otherwise the validators run, then
// FromNative. Advisories are collected into the result and published as
// events.CoercionAdvisory. All field failures are reported together in a
// *ValidationError, alongside the partial result.
func Deserialize(ctx context.Context, sch *schema.Schema, data any) (*Result, error) {
	ctx, _ = reqid.Ensure(ctx)
	eventbus.Publish(ctx, events.ConversionStart{Schema: sch.Name, Direction: events.Inbound, Count: 1})
	start := time.Now()

	res, err := deserialize(ctx, sch, data)

	eventbus.Publish(ctx, events.ConversionFinish{
		Schema:    sch.Name,
		Direction: events.Inbound,
		Count:     1,
		Err:       err,
		Duration:  time.Since(start),
	})
	return res, err
}

func deserialize(ctx context.Context, sch *schema.Schema, data any) (*Result, error) {
	res := &Result{Values: ordered.New(sch.Len())}
	var failed []*FieldError

	for _, bf := range sch.Fields() {
		f := bf.Field
		v, present, err := lookup(data, bf.Name)
		if err != nil {
			return nil, err
		}
		if !present || f.IsEmpty(v) {
			if f.Required() {
				failed = append(failed, &FieldError{Field: bf.Name, Messages: []string{MsgRequired}})
			} else if present {
				res.Values.Set(bf.Name, nil)
			}
			continue
		}

		if err := f.Validate(v); err != nil {
			failed = append(failed, &FieldError{Field: bf.Name, Messages: messages(err)})
			continue
		}
		typed, adv, err := f.FromNative(v)
		if err != nil {
			failed = append(failed, &FieldError{Field: bf.Name, Messages: []string{err.Error()}})
			continue
		}
		if adv != nil {
			res.Advisories = append(res.Advisories, FieldAdvisory{Field: bf.Name, Advisory: adv})
			eventbus.Publish(ctx, events.CoercionAdvisory{
				Schema:  sch.Name,
				Field:   bf.Name,
				Kind:    adv.Kind.String(),
				Value:   adv.Value,
				Message: adv.Message,
			})
		}
		res.Values.Set(bf.Name, typed)
	}

	if len(failed) > 0 {
		return res, &ValidationError{Fields: failed}
	}
	return res, nil
}

// lookup reads key from a key-mapping input.
func lookup(data any, key string) (any, bool, error) {
	switch d := data.(type) {
	case map[string]any:
		v, ok := d[key]
		return v, ok, nil
	case resolve.Keyed:
		v, ok := d.Lookup(key)
		return v, ok, nil
	case nil:
		return nil, false, nil
	}
	return nil, false, errors.Errorf("serializer: cannot deserialize %T, want a key-mapping", data)
}

func messages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
