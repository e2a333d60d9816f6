package main

import (
	"fmt"
	"io"

	"github.com/gopher53/lua53vm/internal/luacode"
)

// printPrototype writes a `luac -l`-style disassembly of proto and,
// when full is true, its nested prototypes, to w.
//
// Grounded on 256lights-zb/internal/luac/luac.go's printFunction:
// the header line (source range, instruction count), the param/slot/
// upvalue/constant/function summary line, and one line per instruction
// with its source line number and a contextual comment for
// constant-table references.
func printPrototype(w io.Writer, proto *luacode.Prototype, full bool) {
	printOneFunction(w, proto)
	if full {
		for _, child := range proto.Protos {
			printPrototype(w, child, full)
		}
	}
}

func printOneFunction(w io.Writer, f *luacode.Prototype) {
	fmt.Fprintf(w, "\nfunction <%s:%d,%d> (%d instructions)\n",
		sourceName(f.Source), f.LineDefined, f.LastLineDefined, len(f.Code))
	fmt.Fprintf(w, "%d%s params, %d slots, %d upvalues, %d locals, %d constants, %d functions\n",
		f.NumParams, varargMark(f.IsVararg), f.MaxStackSize,
		len(f.Upvalues), len(f.LocVars), len(f.Constants), len(f.Protos))

	for pc, instr := range f.Code {
		line := f.LineForPC(pc)
		lineField := "-"
		if line != 0 {
			lineField = fmt.Sprint(line)
		}
		fmt.Fprintf(w, "\t%d\t[%s]\t%s%s\n", pc+1, lineField, instr, constantComment(f, instr))
	}
}

func sourceName(source string) string {
	if source == "" {
		return "?"
	}
	return source
}

func varargMark(isVararg bool) string {
	if isVararg {
		return "+"
	}
	return ""
}

// constantComment annotates LOADK with its constant and, for the
// RK-operand opcodes listed below, a C operand that addresses the
// constant table. B operands and other opcodes are not annotated.
func constantComment(f *luacode.Prototype, instr luacode.Instruction) string {
	constantAt := func(i int) (luacode.Value, bool) {
		if i < 0 || i >= len(f.Constants) {
			return luacode.Value{}, false
		}
		return f.Constants[i], true
	}
	switch instr.OpCode() {
	case luacode.OpLoadK:
		if c, ok := constantAt(int(instr.Bx())); ok {
			return fmt.Sprintf("\t; %s", formatConstant(c))
		}
	case luacode.OpGetTable, luacode.OpSetTable, luacode.OpAdd, luacode.OpSub,
		luacode.OpMul, luacode.OpMod, luacode.OpPow, luacode.OpDiv, luacode.OpIDiv,
		luacode.OpBAnd, luacode.OpBOr, luacode.OpBXor, luacode.OpShl, luacode.OpShr,
		luacode.OpEq, luacode.OpLt, luacode.OpLe:
		if luacode.IsConstantRK(instr.C()) {
			if c, ok := constantAt(luacode.ConstantIndex(instr.C())); ok {
				return fmt.Sprintf("\t; %s", formatConstant(c))
			}
		}
	}
	return ""
}

func formatConstant(c luacode.Value) string {
	switch {
	case c.IsNil():
		return "nil"
	case c.IsBoolean():
		b, _ := c.Bool()
		return fmt.Sprint(b)
	case c.IsInteger():
		i, _ := c.Int64()
		return fmt.Sprint(i)
	case c.IsFloat():
		f, _ := c.Float64()
		return fmt.Sprint(f)
	default:
		s, _ := c.String()
		return fmt.Sprintf("%q", s)
	}
}
