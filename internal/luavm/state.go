package luavm

import (
	"strings"

	"github.com/gopher53/lua53vm/internal/luacode"
	"github.com/gopher53/lua53vm/internal/luavalue"
)

// CompareOp identifies a relational test understood by [State.Compare].
type CompareOp int

const (
	CompareEQ CompareOp = iota
	CompareLT
	CompareLE
)

// State is the embedding surface a running [luacode.Prototype] executes
// against: a value stack plus the bookkeeping needed to fetch and
// decode the prototype's instructions one at a time.
//
// Grounded on 256lights-zb/internal/mylua/lua.go's State, scaled down to
// this system's single-prototype, call-frame-free scope: there is one
// Stack, one Prototype, and one program counter, not a call stack of
// them (spec.md §1 Non-goals).
type State struct {
	stack *Stack
	proto *luacode.Prototype
	pc    int
}

// NewState creates a State ready to execute proto from its first
// instruction, with its stack pre-sized to the prototype's declared
// register count (spec.md §4.F).
func NewState(proto *luacode.Prototype) *State {
	capacity := int(proto.MaxStackSize)
	if capacity < 32 {
		capacity = 32
	}
	st := &State{stack: NewStack(capacity), proto: proto}
	st.stack.SetTop(int(proto.MaxStackSize))
	return st
}

// Proto returns the prototype the state is executing.
func (st *State) Proto() *luacode.Prototype { return st.proto }

// PC returns the current program counter: the index into Proto().Code
// of the next instruction [State.Fetch] will return.
func (st *State) PC() int { return st.pc }

// --- stack shape -----------------------------------------------------

// GetTop returns the index of the top stack element, which is also the
// number of elements on the stack.
func (st *State) GetTop() int { return st.stack.Top() }

// SetTop sets the stack top, per [Stack.SetTop]'s rules.
func (st *State) SetTop(idx int) error { return st.stack.SetTop(idx) }

// PushValue pushes a copy of the value at idx onto the top of the stack.
func (st *State) PushValue(idx int) error {
	return st.stack.Push(st.stack.Get(idx))
}

// Copy copies the value at fromIdx into toIdx, overwriting whatever was
// there.
func (st *State) Copy(fromIdx, toIdx int) error {
	return st.stack.Set(toIdx, st.stack.Get(fromIdx))
}

// Replace pops the top value and stores it at idx.
func (st *State) Replace(idx int) error {
	v, err := st.stack.Pop()
	if err != nil {
		return err
	}
	return st.stack.Set(idx, v)
}

// Insert moves the top value down to idx, shifting everything from idx
// to the old top up by one.
func (st *State) Insert(idx int) error {
	return st.stack.Rotate(idx, 1)
}

// Remove removes the value at idx, shifting everything above it down by
// one.
func (st *State) Remove(idx int) error {
	if err := st.stack.Rotate(idx, -1); err != nil {
		return err
	}
	_, err := st.stack.Pop()
	return err
}

// Rotate rotates the elements in [idx, GetTop()] by n positions, per
// [Stack.Rotate].
func (st *State) Rotate(idx, n int) error { return st.stack.Rotate(idx, n) }

// --- typed pushers -----------------------------------------------------

func (st *State) PushNil() error           { return st.stack.Push(nil) }
func (st *State) PushBoolean(b bool) error { return st.stack.Push(b) }
func (st *State) PushInteger(i int64) error {
	return st.stack.Push(i)
}
func (st *State) PushNumber(f float64) error { return st.stack.Push(f) }
func (st *State) PushString(s string) error  { return st.stack.Push(s) }

// --- typed readers -----------------------------------------------------

// ToBoolean converts the value at idx to a boolean per Lua truthiness
// (nil and false are falsy, everything else is truthy). It never fails.
func (st *State) ToBoolean(idx int) bool {
	return luavalue.ToBoolean(st.stack.Get(idx))
}

// ToInteger converts the value at idx to an int64, returning 0 if the
// value has no integer representation.
func (st *State) ToInteger(idx int) int64 {
	i, _ := luavalue.ToInteger(st.stack.Get(idx))
	return i
}

// ToIntegerX is the checked form of ToInteger.
func (st *State) ToIntegerX(idx int) (int64, bool) {
	return luavalue.ToInteger(st.stack.Get(idx))
}

// ToNumber converts the value at idx to a float64, returning 0 if the
// value is not a number or numeral string.
func (st *State) ToNumber(idx int) float64 {
	f, _ := luavalue.ToFloat(st.stack.Get(idx))
	return f
}

// ToNumberX is the checked form of ToNumber.
func (st *State) ToNumberX(idx int) (float64, bool) {
	return luavalue.ToFloat(st.stack.Get(idx))
}

// ToString converts the value at idx to its display string, returning
// "" if the value is not a string or number.
func (st *State) ToString(idx int) string {
	s, _ := luavalue.ToDisplayString(st.stack.Get(idx))
	return s
}

// ToStringX is the checked form of ToString.
func (st *State) ToStringX(idx int) (string, bool) {
	return luavalue.ToDisplayString(st.stack.Get(idx))
}

// --- arithmetic, comparison, length, concatenation --------------------

// Arith pops one operand (for a unary op) or two (for a binary op) and
// pushes the result, per [luavalue.Arith].
func (st *State) Arith(op luavalue.ArithOp) error {
	var a, b luavalue.Value
	if op == luavalue.OpUnm || op == luavalue.OpBNot {
		v, err := st.stack.Pop()
		if err != nil {
			return err
		}
		a = v
	} else {
		bv, err := st.stack.Pop()
		if err != nil {
			return err
		}
		av, err := st.stack.Pop()
		if err != nil {
			return err
		}
		a, b = av, bv
	}
	result, err := luavalue.Arith(op, a, b)
	if err != nil {
		return err
	}
	return st.stack.Push(result)
}

// Compare reports the result of the relational test op between the
// values at idx1 and idx2. It neither pushes nor pops.
func (st *State) Compare(idx1, idx2 int, op CompareOp) (bool, error) {
	a, b := st.stack.Get(idx1), st.stack.Get(idx2)
	switch op {
	case CompareEQ:
		return luavalue.Equals(a, b), nil
	case CompareLT:
		result, ok := luavalue.Less(a, b)
		if !ok {
			return false, luavalue.ErrArithmetic
		}
		return result, nil
	case CompareLE:
		result, ok := luavalue.LessOrEqual(a, b)
		if !ok {
			return false, luavalue.ErrArithmetic
		}
		return result, nil
	default:
		panic("luavm: unknown CompareOp")
	}
}

// Len returns the length of the value at idx: a string's byte length,
// or a table's [luavalue.Table.Len]. Any other type fails with
// [luavalue.ErrLength].
func (st *State) Len(idx int) (int64, error) {
	switch v := st.stack.Get(idx).(type) {
	case string:
		return int64(len(v)), nil
	case *luavalue.Table:
		return v.Len(), nil
	default:
		return 0, luavalue.ErrLength
	}
}

// Concat pops the top n values, converts each to its display string,
// concatenates them in stack order, and pushes the result. n == 0
// pushes the empty string; n == 1 is a no-op.
func (st *State) Concat(n int) error {
	if n == 0 {
		return st.stack.Push("")
	}
	if n == 1 {
		return nil
	}
	values := make([]luavalue.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := st.stack.Pop()
		if err != nil {
			return err
		}
		values[i] = v
	}
	var b strings.Builder
	for _, v := range values {
		s, ok := luavalue.ToDisplayString(v)
		if !ok {
			return luavalue.ErrNotConcatenable
		}
		b.WriteString(s)
	}
	return st.stack.Push(b.String())
}

// --- table API -----------------------------------------------------

func (st *State) table(idx int) (*luavalue.Table, error) {
	t, ok := st.stack.Get(idx).(*luavalue.Table)
	if !ok {
		return nil, luavalue.ErrNotATable
	}
	return t, nil
}

// NewTable pushes a new, empty table.
func (st *State) NewTable() error { return st.CreateTable(0, 0) }

// CreateTable pushes a new table preallocated for nArr array slots and
// nRec hash entries.
func (st *State) CreateTable(nArr, nRec int) error {
	return st.stack.Push(luavalue.NewTable(nArr, nRec))
}

// GetTable pops a key, looks it up in the table at idx, and pushes the
// result.
func (st *State) GetTable(idx int) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	k, err := st.stack.Pop()
	if err != nil {
		return err
	}
	return st.stack.Push(t.Get(k))
}

// GetField pushes t[key] for the table at idx.
func (st *State) GetField(idx int, key string) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	return st.stack.Push(t.Get(key))
}

// GetI pushes t[i] for the table at idx.
func (st *State) GetI(idx int, i int64) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	return st.stack.Push(t.Get(i))
}

// SetTable pops a value and then a key, and stores value at key in the
// table at idx.
func (st *State) SetTable(idx int) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	v, err := st.stack.Pop()
	if err != nil {
		return err
	}
	k, err := st.stack.Pop()
	if err != nil {
		return err
	}
	return t.Set(k, v)
}

// SetField pops a value and stores it at t[key] for the table at idx.
func (st *State) SetField(idx int, key string) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	v, err := st.stack.Pop()
	if err != nil {
		return err
	}
	return t.Set(key, v)
}

// SetI pops a value and stores it at t[i] for the table at idx.
func (st *State) SetI(idx int, i int64) error {
	t, err := st.table(idx)
	if err != nil {
		return err
	}
	v, err := st.stack.Pop()
	if err != nil {
		return err
	}
	return t.Set(i, v)
}

// --- execution support -----------------------------------------------

// Fetch returns the instruction at the current program counter and
// advances the program counter past it. It panics if the program
// counter has run off the end of the code array; callers (the
// dispatch loop) are expected to stop on RETURN before that happens.
func (st *State) Fetch() luacode.Instruction {
	i := st.proto.Code[st.pc]
	st.pc++
	return i
}

// AddPC adjusts the program counter by delta, as JMP, FORPREP, and
// FORLOOP do.
func (st *State) AddPC(delta int) { st.pc += delta }

// GetConst converts the i'th entry of the running prototype's constant
// table to a runtime [luavalue.Value].
func (st *State) GetConst(i int) luavalue.Value {
	return convertConstant(st.proto.Constants[i])
}

// GetRK resolves an RK operand (spec.md §9(b)): if rk addresses a
// constant, GetConst is used; otherwise rk is a 0-based register index,
// translated to this state's 1-based stack addressing.
func (st *State) GetRK(rk uint16) luavalue.Value {
	if luacode.IsConstantRK(rk) {
		return st.GetConst(luacode.ConstantIndex(rk))
	}
	return st.stack.Get(luacode.RegisterIndex(rk) + 1)
}

// Reg converts a 0-based register number, as used in instruction
// operands, to this state's 1-based stack index.
func Reg(r int) int { return r + 1 }

// convertConstant converts a load-time [luacode.Value] constant to its
// runtime [luavalue.Value] representation.
func convertConstant(c luacode.Value) luavalue.Value {
	if c.IsNil() {
		return nil
	}
	if b, ok := c.Bool(); ok {
		return b
	}
	if i, ok := c.Int64(); ok {
		return i
	}
	if f, ok := c.Float64(); ok {
		return f
	}
	s, _ := c.String()
	return s
}
