package luavalue

import (
	"errors"
	"fmt"
)

// Value-level error kinds (spec.md §7, "Values").
var (
	// ErrArithmetic is returned when an arithmetic or bitwise operation
	// has no valid integer or float coercion for its operands.
	ErrArithmetic = errors.New("luavalue: arithmetic error")
	// ErrLength is returned by the length operation (package luavm's
	// State.Len) for a value that is neither a string nor a table.
	ErrLength = errors.New("luavalue: attempt to get length")
	// ErrNotATable is returned by table operations on a non-table
	// receiver.
	ErrNotATable = errors.New("luavalue: not a table")
	// ErrTableIndexIsNil is returned by (*Table).Set when the key is nil.
	ErrTableIndexIsNil = errors.New("luavalue: table index is nil")
	// ErrTableIndexIsNaN is returned by (*Table).Set when the key is a
	// NaN float.
	ErrTableIndexIsNaN = errors.New("luavalue: table index is NaN")
)

// Lower-level arithmetic failure reasons. Arith always wraps one of these
// together with [ErrArithmetic], so callers that want the detail can
// still use errors.Is against the specific reason.
var (
	errDivideByZero = errors.New("luavalue: attempt to divide by zero")
	errNotANumber   = errors.New("luavalue: attempt to perform arithmetic on a non-number")
	errNoInteger    = errors.New("luavalue: number has no integer representation")
)

// ErrNotConcatenable is returned by concatenation when an operand is
// neither a string nor a number (spec.md §9 open question (f)). It wraps
// [ErrArithmetic].
var ErrNotConcatenable = fmt.Errorf("%w: attempt to concatenate a non-string, non-number value", ErrArithmetic)
