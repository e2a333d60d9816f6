package luavm

import (
	"fmt"

	"github.com/gopher53/lua53vm/internal/luacode"
	"github.com/gopher53/lua53vm/internal/luavalue"
)

// lFieldsPerFlush is the number of array elements SETLIST transfers per
// batch, matching the Lua 5.3 reference implementation's LFIELDS_PER_FLUSH.
const lFieldsPerFlush = 50

// Run executes proto from its first instruction until it reaches a
// RETURN instruction, returning the values named by RETURN's operands.
//
// Run implements only the subset of Lua 5.3 opcodes that make sense
// without call frames, closures, upvalues, or metatables (spec.md §1
// Non-goals, §4.I): arithmetic and comparison, table construction and
// indexing, numeric for-loops, and straight-line control flow. Any
// other opcode fails with [ErrUnknownInstruction].
//
// Grounded on 256lights-zb/internal/mylua's exec loop structure (fetch,
// switch on opcode, mutate state, loop) and speedata-go-lua/vm.go's
// instruction semantics for the individual opcodes, adapted to this
// scope and to the single flat Stack in this package.
func Run(proto *luacode.Prototype) ([]luavalue.Value, error) {
	st := NewState(proto)
	for {
		result, done, err := st.step()
		if err != nil {
			pc := st.pc - 1
			op := proto.Code[pc].OpCode()
			if line := proto.LineForPC(pc); line != 0 {
				return nil, fmt.Errorf("luavm: %s:%d: pc=%d %v: %w", proto.Source, line, pc, op, err)
			}
			return nil, fmt.Errorf("luavm: pc=%d %v: %w", pc, op, err)
		}
		if done {
			return result, nil
		}
	}
}

// step executes a single instruction. done is true once a RETURN has
// been executed, in which case result holds the returned values.
func (st *State) step() (result []luavalue.Value, done bool, err error) {
	instr := st.Fetch()
	op := instr.OpCode()
	a := int(instr.A())

	switch op {
	case luacode.OpMove:
		err = st.Copy(Reg(int(instr.B())), Reg(a))

	case luacode.OpLoadK:
		err = st.stack.Set(Reg(a), st.GetConst(int(instr.Bx())))

	case luacode.OpLoadKX:
		extra := st.Fetch()
		if extra.OpCode() != luacode.OpExtraArg {
			return nil, false, ErrUnknownInstruction
		}
		err = st.stack.Set(Reg(a), st.GetConst(int(extra.Ax())))

	case luacode.OpLoadBool:
		if err = st.stack.Set(Reg(a), instr.B() != 0); err == nil && instr.C() != 0 {
			st.pc++
		}

	case luacode.OpLoadNil:
		for i := 0; i <= int(instr.B()); i++ {
			if err = st.stack.Set(Reg(a+i), nil); err != nil {
				break
			}
		}

	case luacode.OpAdd, luacode.OpSub, luacode.OpMul, luacode.OpMod, luacode.OpPow,
		luacode.OpDiv, luacode.OpIDiv, luacode.OpBAnd, luacode.OpBOr, luacode.OpBXor,
		luacode.OpShl, luacode.OpShr:
		err = st.binOp(a, instr, arithOpFor[op])

	case luacode.OpUnm:
		err = st.unOp(a, instr, luavalue.OpUnm)
	case luacode.OpBNot:
		err = st.unOp(a, instr, luavalue.OpBNot)

	case luacode.OpNot:
		err = st.stack.Set(Reg(a), !luavalue.ToBoolean(st.stack.Get(Reg(int(instr.B())))))

	case luacode.OpLen:
		var n int64
		n, err = st.Len(Reg(int(instr.B())))
		if err == nil {
			err = st.stack.Set(Reg(a), n)
		}

	case luacode.OpConcat:
		b, c := int(instr.B()), int(instr.C())
		n := c - b + 1
		if err = st.stack.Check(n); err != nil {
			break
		}
		for i := b; i <= c && err == nil; i++ {
			err = st.stack.Push(st.stack.Get(Reg(i)))
		}
		if err != nil {
			break
		}
		if err = st.Concat(n); err != nil {
			break
		}
		var v luavalue.Value
		if v, err = st.stack.Pop(); err == nil {
			err = st.stack.Set(Reg(a), v)
		}

	case luacode.OpJmp:
		if a != 0 {
			return nil, false, ErrUnsupportedJmpClose
		}
		st.AddPC(int(instr.SBx()))

	case luacode.OpEq, luacode.OpLt, luacode.OpLe:
		err = st.relOp(a, instr, op)

	case luacode.OpTest:
		if luavalue.ToBoolean(st.stack.Get(Reg(a))) != (instr.C() != 0) {
			st.pc++
		}

	case luacode.OpTestSet:
		b := Reg(int(instr.B()))
		if luavalue.ToBoolean(st.stack.Get(b)) == (instr.C() != 0) {
			err = st.Copy(b, Reg(a))
		} else {
			st.pc++
		}

	case luacode.OpForPrep:
		err = st.forPrep(a, instr)

	case luacode.OpForLoop:
		err = st.forLoop(a, instr)

	case luacode.OpNewTable:
		nArr, nRec := fb2int(byte(instr.B())), fb2int(byte(instr.C()))
		err = st.stack.Set(Reg(a), luavalue.NewTable(nArr, nRec))

	case luacode.OpGetTable:
		err = st.indexGet(a, instr)

	case luacode.OpSetTable:
		err = st.indexSet(a, instr)

	case luacode.OpSetList:
		err = st.setList(a, instr)

	case luacode.OpReturn:
		result, err = st.doReturn(a, instr)
		if err == nil {
			done = true
		}

	default:
		return nil, false, ErrUnknownInstruction
	}
	return result, done, err
}

var arithOpFor = map[luacode.OpCode]luavalue.ArithOp{
	luacode.OpAdd:  luavalue.OpAdd,
	luacode.OpSub:  luavalue.OpSub,
	luacode.OpMul:  luavalue.OpMul,
	luacode.OpMod:  luavalue.OpMod,
	luacode.OpPow:  luavalue.OpPow,
	luacode.OpDiv:  luavalue.OpDiv,
	luacode.OpIDiv: luavalue.OpIDiv,
	luacode.OpBAnd: luavalue.OpBAnd,
	luacode.OpBOr:  luavalue.OpBOr,
	luacode.OpBXor: luavalue.OpBXor,
	luacode.OpShl:  luavalue.OpShl,
	luacode.OpShr:  luavalue.OpShr,
}

// binOp implements the family of binary arithmetic/bitwise opcodes,
// which all share the "A, B(RK), C(RK)" operand shape.
func (st *State) binOp(a int, instr luacode.Instruction, op luavalue.ArithOp) error {
	left := st.GetRK(instr.B())
	right := st.GetRK(instr.C())
	result, err := luavalue.Arith(op, left, right)
	if err != nil {
		return err
	}
	return st.stack.Set(Reg(a), result)
}

// unOp implements UNM and BNOT, which read only B (a register, not RK).
func (st *State) unOp(a int, instr luacode.Instruction, op luavalue.ArithOp) error {
	operand := st.stack.Get(Reg(int(instr.B())))
	result, err := luavalue.Arith(op, operand, nil)
	if err != nil {
		return err
	}
	return st.stack.Set(Reg(a), result)
}

// relOp implements EQ, LT, and LE, which skip the following instruction
// unless the comparison result matches A (spec.md §4.H).
func (st *State) relOp(a int, instr luacode.Instruction, op luacode.OpCode) error {
	left := st.GetRK(instr.B())
	right := st.GetRK(instr.C())
	var result bool
	var ok bool
	switch op {
	case luacode.OpEq:
		result, ok = luavalue.Equals(left, right), true
	case luacode.OpLt:
		result, ok = luavalue.Less(left, right)
	case luacode.OpLe:
		result, ok = luavalue.LessOrEqual(left, right)
	}
	if !ok {
		return luavalue.ErrArithmetic
	}
	if result != (a != 0) {
		st.pc++
	}
	return nil
}

// forPrep implements FORPREP: it subtracts the loop step from the
// initial value (undone by the first FORLOOP) and jumps to the
// matching FORLOOP, mirroring the reference VM's loop protocol.
func (st *State) forPrep(a int, instr luacode.Instruction) error {
	initV, err := st.forNumber(Reg(a))
	if err != nil {
		return err
	}
	stepV, err := st.forNumber(Reg(a + 2))
	if err != nil {
		return err
	}
	init, err := luavalue.Arith(luavalue.OpSub, initV, stepV)
	if err != nil {
		return err
	}
	if err := st.stack.Set(Reg(a), init); err != nil {
		return err
	}
	st.AddPC(int(instr.SBx()))
	return nil
}

// forLoop implements FORLOOP: advance the control variable by the step,
// and if it has not passed the limit, copy it to R(A+3) and jump back.
func (st *State) forLoop(a int, instr luacode.Instruction) error {
	step, err := st.forNumber(Reg(a + 2))
	if err != nil {
		return err
	}
	cur, err := st.forNumber(Reg(a))
	if err != nil {
		return err
	}
	next, err := luavalue.Arith(luavalue.OpAdd, cur, step)
	if err != nil {
		return err
	}
	limit, err := st.forNumber(Reg(a + 1))
	if err != nil {
		return err
	}
	positive, _ := luavalue.Less(int64(0), step)
	var continues bool
	if positive {
		continues, _ = luavalue.LessOrEqual(next, limit)
	} else {
		continues, _ = luavalue.LessOrEqual(limit, next)
	}
	if !continues {
		return nil
	}
	if err := st.stack.Set(Reg(a), next); err != nil {
		return err
	}
	if err := st.stack.Set(Reg(a+3), next); err != nil {
		return err
	}
	st.AddPC(int(instr.SBx()))
	return nil
}

// forNumber coerces a numeric-for control slot to a number, per Lua
// 5.3's requirement that for-loop bounds are numbers (not numeral
// strings).
func (st *State) forNumber(idx int) (luavalue.Value, error) {
	v := st.stack.Get(idx)
	switch v.(type) {
	case int64, float64:
		return v, nil
	default:
		f, ok := luavalue.ToFloat(v)
		if !ok {
			return nil, luavalue.ErrArithmetic
		}
		return f, nil
	}
}

func fb2int(b byte) int {
	e := (b >> 3) & 0x1F
	if e == 0 {
		return int(b)
	}
	return (int(b&7) + 8) << (e - 1)
}

// indexGet implements GETTABLE: R(A) = R(B)[RK(C)].
func (st *State) indexGet(a int, instr luacode.Instruction) error {
	t, ok := st.stack.Get(Reg(int(instr.B()))).(*luavalue.Table)
	if !ok {
		return luavalue.ErrNotATable
	}
	key := st.GetRK(instr.C())
	return st.stack.Set(Reg(a), t.Get(key))
}

// indexSet implements SETTABLE: R(A)[RK(B)] = RK(C).
func (st *State) indexSet(a int, instr luacode.Instruction) error {
	t, ok := st.stack.Get(Reg(a)).(*luavalue.Table)
	if !ok {
		return luavalue.ErrNotATable
	}
	key := st.GetRK(instr.B())
	val := st.GetRK(instr.C())
	return t.Set(key, val)
}

// setList implements SETLIST: R(A)[(C-1)*FPF+i] = R(A+i), for i = 1..B
// (or until the current stack top if B == 0). C == 0 means the real C
// is in the following EXTRAARG instruction.
func (st *State) setList(a int, instr luacode.Instruction) error {
	t, ok := st.stack.Get(Reg(a)).(*luavalue.Table)
	if !ok {
		return luavalue.ErrNotATable
	}
	b := int(instr.B())
	if b == 0 {
		b = st.stack.Top() - Reg(a)
	}
	c := int(instr.C())
	if c == 0 {
		extra := st.Fetch()
		if extra.OpCode() != luacode.OpExtraArg {
			return ErrUnknownInstruction
		}
		c = int(extra.Ax())
	}
	base := (c - 1) * lFieldsPerFlush
	for i := 1; i <= b; i++ {
		v := st.stack.Get(Reg(a + i))
		if err := t.Set(int64(base+i), v); err != nil {
			return err
		}
	}
	return nil
}

// doReturn implements RETURN: collect R(A)..R(A+B-2) (or up to the
// current stack top if B == 0) as the returned values.
func (st *State) doReturn(a int, instr luacode.Instruction) ([]luavalue.Value, error) {
	b := int(instr.B())
	var n int
	if b == 0 {
		n = st.stack.Top() - Reg(a) + 1
	} else {
		n = b - 1
	}
	result := make([]luavalue.Value, n)
	for i := 0; i < n; i++ {
		result[i] = st.stack.Get(Reg(a + i))
	}
	return result, nil
}
