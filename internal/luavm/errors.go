package luavm

import "errors"

// Stack error kinds (spec.md §7, "Stack").
var (
	ErrStackOverflow  = errors.New("luavm: stack overflow")
	ErrStackUnderflow = errors.New("luavm: stack underflow")
	ErrInvalidIndex   = errors.New("luavm: invalid stack index")
)

// VM error kinds (spec.md §7, "VM").
var (
	// ErrUnknownInstruction is returned when an opcode's action is not
	// implemented by this dispatcher (spec.md §1 Non-goals: upvalues,
	// closures, calls, varargs, generic-for).
	ErrUnknownInstruction = errors.New("luavm: unknown or unimplemented instruction")
	// ErrUnsupportedJmpClose is returned for a JMP instruction with
	// A != 0, which in full Lua 5.3 closes upvalues at or above R(A).
	ErrUnsupportedJmpClose = errors.New("luavm: JMP with upvalue close is not supported")
)

// ErrOutOfMemory is the Allocation error kind (spec.md §7): the stack
// could not grow to satisfy a Check request.
var ErrOutOfMemory = errors.New("luavm: out of memory")
