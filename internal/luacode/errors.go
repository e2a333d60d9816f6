package luacode

import "errors"

// Decoder error kinds (spec.md §7, "Decoder").
//
// Every failure Undump can return wraps exactly one of these sentinels,
// so callers can classify a failure with [errors.Is] without depending on
// message text.
var (
	ErrNotAPrecompiledChunk    = errors.New("luacode: not a precompiled chunk")
	ErrVersionMismatch         = errors.New("luacode: version mismatch")
	ErrFormatMismatch          = errors.New("luacode: format mismatch")
	ErrCorrupted               = errors.New("luacode: corrupted chunk")
	ErrIntSizeMismatch         = errors.New("luacode: int size mismatch")
	ErrSizetSizeMismatch       = errors.New("luacode: size_t size mismatch")
	ErrInstructionSizeMismatch = errors.New("luacode: instruction size mismatch")
	ErrLuaIntegerSizeMismatch  = errors.New("luacode: lua_Integer size mismatch")
	ErrLuaNumberSizeMismatch   = errors.New("luacode: lua_Number size mismatch")
	ErrEndiannessMismatch      = errors.New("luacode: endianness mismatch")
	ErrFloatFormatMismatch     = errors.New("luacode: float format mismatch")
	ErrTruncated               = errors.New("luacode: truncated chunk")
)
