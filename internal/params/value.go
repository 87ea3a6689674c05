package params

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which scalar a Value carries.
type Kind int

const (
	// KindInvalid is the zero Kind; a Value of this kind was never set.
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Value is a scalar parameter: a path, a count or a ratio.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// String creates a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Int creates an integer value.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float creates a floating point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Kind returns the kind of scalar held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// String renders v the way it is substituted into a command template.
// Floats keep a fractional part ("50.0") and switch to exponent notation
// outside [1e-4, 1e16), so rendered commands match existing definitions.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return ""
	}
}

// valid reports whether v can be substituted into a template.
func (v Value) valid() (bool, string) {
	switch v.kind {
	case KindInvalid:
		return false, "value was never set"
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return false, "float value must be finite"
		}
	}
	return true, ""
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Number returns v as a float64 when it is numeric.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}
