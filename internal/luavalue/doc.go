// Package luavalue implements the Lua 5.3 value model: the tagged value
// union, its coercion and comparison rules, Lua's floor-division and
// bitwise arithmetic, and the hybrid array/hash table.
//
// It depends only on the standard library; converting a decoded
// luacode constant into a runtime [Value] is done by package luavm. It
// knows nothing about the instruction dispatcher; package luavm builds
// the VM on top of these primitives.
package luavalue
