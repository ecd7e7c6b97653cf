package coerce

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NumKind selects the numeric type produced by a number cast.
type NumKind int

const (
	NumFloat NumKind = iota
	NumInteger
	NumDecimal
)

func (k NumKind) String() string {
	switch k {
	case NumInteger:
		return "int"
	case NumDecimal:
		return "decimal"
	default:
		return "float"
	}
}

// Number casts v to the Go type of kind: float64, int64 or decimal.Decimal.
func Number(v any, kind NumKind) (any, error) {
	switch kind {
	case NumInteger:
		return Int(v)
	case NumDecimal:
		return Decimal(v)
	default:
		return Float(v)
	}
}

// Int casts v to int64. Floats are truncated toward zero; text must be an
// integral literal.
func Int(v any) (int64, error) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case decimal.Decimal:
		return n.IntPart(), nil
	case json.Number:
		return parseInt(string(n))
	case string:
		return parseInt(n)
	}
	return 0, errors.Wrapf(ErrInvalid, "cannot cast %v (%T) to int", v, v)
}

// Float casts v to float64.
func Float(v any) (float64, error) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	case json.Number:
		return parseFloat(string(n))
	case string:
		return parseFloat(n)
	}
	if i, ok := integer(v); ok {
		return float64(i), nil
	}
	if u, ok := v.(uint64); ok {
		return float64(u), nil
	}
	if u, ok := v.(uint); ok {
		return float64(u), nil
	}
	return 0, errors.Wrapf(ErrInvalid, "cannot cast %v (%T) to float", v, v)
}

// Decimal casts v to an arbitrary precision decimal.
func Decimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case bool:
		if n {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, errors.Wrapf(ErrInvalid, "cannot cast %v to decimal", n)
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0), nil
	case json.Number:
		return parseDecimal(string(n))
	case string:
		return parseDecimal(n)
	}
	if i, ok := integer(v); ok {
		return decimal.NewFromInt(i), nil
	}
	return decimal.Decimal{}, errors.Wrapf(ErrInvalid, "cannot cast %v (%T) to decimal", v, v)
}

// IsNumber reports whether v is a Go numeric value (bool excluded).
func IsNumber(v any) bool {
	switch v.(type) {
	case float32, float64, uint, uint64, decimal.Decimal, json.Number:
		return true
	}
	_, ok := integer(v)
	return ok
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func uintToInt(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, errors.Wrapf(ErrInvalid, "%d overflows int", u)
	}
	return int64(u), nil
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Wrapf(ErrInvalid, "cannot convert float %v to int", f)
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, errors.Wrapf(ErrInvalid, "%v overflows int", f)
	}
	return int64(t), nil
}

func parseInt(s string) (int64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "invalid literal for int: %q", s)
	}
	return i, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "could not convert string to float: %q", s)
	}
	return f, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalid, "invalid literal for decimal: %q", s)
	}
	return d, nil
}
