// Package luavm implements the Lua 5.3 register-based virtual machine:
// the value stack, the Lua State embedding surface built on top of it,
// and the per-opcode dispatcher that drives a decoded
// [luacode.Prototype] to completion.
//
// Grounded throughout on 256lights-zb/internal/mylua's State and exec
// loop, scaled down to this system's scope: no call frames, upvalues,
// or metatables, since the source spec treats function calls, closures,
// and generic-for as out of scope.
package luavm
