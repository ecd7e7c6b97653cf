// Package constants holds the constant table consulted by field conversions:
// the ISO-8601 format marker, the default date and date-time formats and the
// set of external values treated as "no value supplied".
package constants

import (
	"os"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ISO8601 is the format marker selecting ISO-8601 rendering and parsing.
	ISO8601 = "iso-8601"
	// DateFormat is the default strftime pattern for date fields.
	DateFormat = "%Y-%m-%d"
	// DateTimeFormat is the default format for date-time fields.
	DateTimeFormat = ISO8601
)

// Table is the set of constants shared by all fields of a schema.
type Table struct {
	ISO8601        string   `yaml:"iso_8601"`
	DateFormat     string   `yaml:"date_format"`
	DateTimeFormat string   `yaml:"datetime_format"`
	EmptyStrings   []string `yaml:"empty_strings"`
	// EmptyCollections makes zero-length slices, arrays and maps empty values.
	EmptyCollections bool `yaml:"empty_collections"`
}

var defaultTable = Table{
	ISO8601:          ISO8601,
	DateFormat:       DateFormat,
	DateTimeFormat:   DateTimeFormat,
	EmptyStrings:     []string{""},
	EmptyCollections: true,
}

// Default returns a copy of the built-in table.
func Default() *Table {
	t := defaultTable
	t.EmptyStrings = append([]string(nil), defaultTable.EmptyStrings...)
	return &t
}

// Load reads a YAML document from path and overlays it on the defaults.
// Keys missing from the document keep their default values.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read constants %s", path)
	}
	return Parse(data)
}

// Parse overlays a YAML document on the defaults.
func Parse(data []byte) (*Table, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "parse constants")
	}
	if t.ISO8601 == "" {
		t.ISO8601 = ISO8601
	}
	return t, nil
}

// IsISO8601 reports whether format selects ISO-8601 handling.
func (t *Table) IsISO8601(format string) bool {
	return strings.EqualFold(format, t.ISO8601)
}

// IsEmpty reports whether v belongs to the empty sentinel set.
// nil and typed nil pointers are always empty.
func (t *Table) IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		for _, e := range t.EmptyStrings {
			if s == e {
				return true
			}
		}
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return true
		}
		return t.EmptyCollections && rv.Len() == 0
	case reflect.Array:
		return t.EmptyCollections && rv.Len() == 0
	}
	return false
}
