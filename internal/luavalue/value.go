package luavalue

import (
	"math"
	"strconv"
	"strings"
)

// Value is a dynamically-typed Lua value. The dynamic type is one of:
//
//	nil      — the Lua nil
//	bool     — a Lua boolean
//	int64    — a Lua integer
//	float64  — a Lua float
//	string   — a Lua string (immutable)
//	*Table   — a Lua table, compared by identity
//
// No other dynamic type may appear in a Value; functions in this package
// and in luavm assume the list above is exhaustive.
//
// Grounded on speedata-go-lua/types.go's untyped value interface{}
// representation.
type Value = any

// TypeName returns the Lua type name of v, as reported by the `type`
// builtin.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case string:
		return "string"
	case *Table:
		return "table"
	default:
		return "unknown"
	}
}

// ToBoolean reports whether v is true per Lua's truthiness rule: nil and
// false are falsy, everything else (including 0 and "") is truthy.
func ToBoolean(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// ToFloat converts v to a float64. Integers cast exactly; strings parse
// as base-10 floats; any other type fails.
func ToFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// pow2_63 is the smallest float64 that cannot be represented as an int64.
const pow2_63 = float64(1 << 63)

// floatToInteger converts f to an int64 if it represents an integer
// value exactly representable in 64 bits.
func floatToInteger(f float64) (int64, bool) {
	if f >= pow2_63 || f < -pow2_63 {
		return 0, false
	}
	i := int64(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

// ToInteger converts v to an int64. Integers pass through; floats
// convert only if they represent an integer value exactly (round-trip
// check); strings try base-10 integer parsing first, then fall back to
// parsing as a float and applying the same exact-representability rule;
// any other type, or a non-representable float, fails.
func ToInteger(v Value) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case float64:
		return floatToInteger(v)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInteger(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// ToDisplayString renders v the way Lua's automatic string coercion
// does: for concatenation and tostring() on numbers and strings.
// ToDisplayString fails for nil, booleans, and tables, which require
// explicit handling by the caller.
func ToDisplayString(v Value) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return formatFloat(v), true
	default:
		return "", false
	}
}

// formatFloat renders a Lua float the way Lua's "%.14g" default format
// does, always showing a decimal point or exponent so the result is
// visibly a float.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Equals reports whether a and b are equal under Lua's rules: integers
// and floats compare numerically across the two subtypes, strings
// compare bytewise, tables compare by identity, booleans must match
// both tag and value, and nil equals only nil.
func Equals(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case bool:
		bb, ok := b.(bool)
		return ok && a == bb
	case int64:
		switch b := b.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		default:
			return false
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return a == float64(b)
		case float64:
			return a == b
		default:
			return false
		}
	case string:
		bs, ok := b.(string)
		return ok && a == bs
	case *Table:
		bt, ok := b.(*Table)
		return ok && a == bt
	default:
		return false
	}
}

// Less reports whether a < b. ok is false if the comparison is not
// defined for a and b's types: ordering is defined only between two
// numbers (integer or float, promoting integer to float when mixed) and
// between two strings (bytewise lexicographic).
func Less(a, b Value) (result, ok bool) {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return a < b, true
		case float64:
			return float64(a) < b, true
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return a < float64(b), true
		case float64:
			return a < b, true
		}
	case string:
		if b, ok := b.(string); ok {
			return a < b, true
		}
	}
	return false, false
}

// LessOrEqual reports whether a <= b, under the same type rules as
// [Less]. It is computed directly rather than via Less(b, a) negated,
// since that transformation is invalid once NaN is involved.
func LessOrEqual(a, b Value) (result, ok bool) {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return a <= b, true
		case float64:
			return float64(a) <= b, true
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return a <= float64(b), true
		case float64:
			return a <= b, true
		}
	case string:
		if b, ok := b.(string); ok {
			return a <= b, true
		}
	}
	return false, false
}
