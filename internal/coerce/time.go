// Package coerce implements the primitive parsing and formatting rules shared
// by field conversions and validators.
package coerce

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/itchyny/timefmt-go"
	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by every parse and cast failure in this package.
var ErrInvalid = errors.New("invalid value")

// isoDateTimeLayouts are tried in order when parsing ISO-8601 date-times.
var isoDateTimeLayouts = []struct {
	layout string
	offset bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999Z07:00", true},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04", false},
}

// ParseDate parses text into a calendar date, either as ISO-8601 (iso) or
// against a strftime pattern.
func ParseDate(text, pattern string, iso bool) (civil.Date, error) {
	if iso {
		d, err := civil.ParseDate(strings.TrimSpace(text))
		if err != nil {
			return civil.Date{}, errors.Wrapf(ErrInvalid, "date %q does not match ISO-8601", text)
		}
		return d, nil
	}
	t, err := timefmt.Parse(text, pattern)
	if err != nil {
		return civil.Date{}, errors.Wrapf(ErrInvalid, "date %q does not match format %q", text, pattern)
	}
	return civil.DateOf(t), nil
}

// ParseDateTime parses text into a date-time. naive reports that the text
// carried no UTC offset (a strftime pattern without %z or %Z); t then holds
// the wall clock in UTC.
func ParseDateTime(text, pattern string, iso bool) (t time.Time, naive bool, err error) {
	if iso {
		s := strings.TrimSpace(text)
		for _, l := range isoDateTimeLayouts {
			if t, err := time.Parse(l.layout, s); err == nil {
				return t, !l.offset, nil
			}
		}
		return time.Time{}, false, errors.Wrapf(ErrInvalid, "datetime %q does not match ISO-8601", text)
	}
	t, err = timefmt.Parse(text, pattern)
	if err != nil {
		return time.Time{}, false, errors.Wrapf(ErrInvalid, "datetime %q does not match format %q", text, pattern)
	}
	naive = !strings.Contains(pattern, "%z") && !strings.Contains(pattern, "%Z")
	return t, naive, nil
}

// FormatDate renders d with a strftime pattern.
func FormatDate(d civil.Date, pattern string) string {
	return timefmt.Format(d.In(time.UTC), pattern)
}

// FormatTime renders t with a strftime pattern.
func FormatTime(t time.Time, pattern string) string {
	return timefmt.Format(t, pattern)
}

// ISODateTime renders t as YYYY-MM-DDTHH:MM:SS[.ffffff]+HH:MM. Microseconds
// appear only when non-zero; sub-microsecond precision is truncated.
func ISODateTime(t time.Time) string {
	return t.Format(isoLayout(t) + "-07:00")
}

// ISOCivilDateTime renders a naive date-time without offset.
func ISOCivilDateTime(dt civil.DateTime) string {
	t := dt.In(time.UTC)
	return t.Format(isoLayout(t))
}

func isoLayout(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return "2006-01-02T15:04:05.000000"
	}
	return "2006-01-02T15:04:05"
}
