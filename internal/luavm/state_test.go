package luavm

import (
	"errors"
	"testing"

	"github.com/gopher53/lua53vm/internal/luacode"
	"github.com/gopher53/lua53vm/internal/luavalue"
)

func emptyProto() *luacode.Prototype {
	return &luacode.Prototype{MaxStackSize: 0}
}

func TestStatePushAndTypedReaders(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(42)
	st.PushNumber(3.5)
	st.PushString("hi")
	st.PushBoolean(true)

	if got := st.ToInteger(-4); got != 42 {
		t.Errorf("ToInteger(-4) = %d; want 42", got)
	}
	if got := st.ToNumber(-3); got != 3.5 {
		t.Errorf("ToNumber(-3) = %v; want 3.5", got)
	}
	if got := st.ToString(-2); got != "hi" {
		t.Errorf("ToString(-2) = %q; want \"hi\"", got)
	}
	if got := st.ToBoolean(-1); !got {
		t.Errorf("ToBoolean(-1) = false; want true")
	}
}

func TestStateCopyInsertRemove(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(1)
	st.PushInteger(2)
	st.PushInteger(3)

	if err := st.Insert(1); err != nil {
		t.Fatal(err)
	}
	want := []int64{3, 1, 2}
	for i, w := range want {
		if got := st.ToInteger(i + 1); got != w {
			t.Errorf("after Insert(1), slot %d = %d; want %d", i+1, got, w)
		}
	}

	if err := st.Remove(1); err != nil {
		t.Fatal(err)
	}
	want = []int64{1, 2}
	for i, w := range want {
		if got := st.ToInteger(i + 1); got != w {
			t.Errorf("after Remove(1), slot %d = %d; want %d", i+1, got, w)
		}
	}

	if err := st.Copy(1, 2); err != nil {
		t.Fatal(err)
	}
	if got := st.ToInteger(2); got != 1 {
		t.Errorf("after Copy(1, 2), slot 2 = %d; want 1", got)
	}
}

func TestStateArith(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(3)
	st.PushInteger(4)
	if err := st.Arith(luavalue.OpAdd); err != nil {
		t.Fatal(err)
	}
	if got := st.ToInteger(-1); got != 7 {
		t.Errorf("3+4 = %d; want 7", got)
	}
}

func TestStateArithUnary(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(5)
	if err := st.Arith(luavalue.OpUnm); err != nil {
		t.Fatal(err)
	}
	if got := st.ToInteger(-1); got != -5 {
		t.Errorf("-5 = %d; want -5", got)
	}
}

func TestStateCompare(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(1)
	st.PushInteger(2)
	result, err := st.Compare(1, 2, CompareLT)
	if err != nil {
		t.Fatal(err)
	}
	if !result {
		t.Errorf("Compare(1,2,LT) = false; want true")
	}
}

func TestStateLen(t *testing.T) {
	st := NewState(emptyProto())
	st.PushString("hello")
	n, err := st.Len(-1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Len(\"hello\") = %d; want 5", n)
	}
}

func TestStateLenFailsOnNumber(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(5)
	if _, err := st.Len(-1); !errors.Is(err, luavalue.ErrLength) {
		t.Errorf("Len(5) error = %v; want ErrLength", err)
	}
}

func TestStateConcat(t *testing.T) {
	st := NewState(emptyProto())
	st.PushString("a")
	st.PushString("b")
	st.PushString("c")
	if err := st.Concat(3); err != nil {
		t.Fatal(err)
	}
	if got := st.ToString(-1); got != "abc" {
		t.Errorf("Concat(3) = %q; want \"abc\"", got)
	}
}

func TestStateConcatEmpty(t *testing.T) {
	st := NewState(emptyProto())
	if err := st.Concat(0); err != nil {
		t.Fatal(err)
	}
	if got := st.ToString(-1); got != "" {
		t.Errorf("Concat(0) = %q; want \"\"", got)
	}
}

func TestStateConcatWithNumber(t *testing.T) {
	st := NewState(emptyProto())
	st.PushString("n=")
	st.PushInteger(7)
	if err := st.Concat(2); err != nil {
		t.Fatal(err)
	}
	if got := st.ToString(-1); got != "n=7" {
		t.Errorf("Concat = %q; want \"n=7\"", got)
	}
}

func TestStateTableRoundTrip(t *testing.T) {
	st := NewState(emptyProto())
	if err := st.NewTable(); err != nil {
		t.Fatal(err)
	}
	st.PushString("value")
	if err := st.SetField(-2, "key"); err != nil {
		t.Fatal(err)
	}
	if err := st.GetField(-1, "key"); err != nil {
		t.Fatal(err)
	}
	if got := st.ToString(-1); got != "value" {
		t.Errorf("t.key = %q; want \"value\"", got)
	}
}

func TestStateTableGetSetNonTableFails(t *testing.T) {
	st := NewState(emptyProto())
	st.PushInteger(1)
	if err := st.GetField(-1, "x"); !errors.Is(err, luavalue.ErrNotATable) {
		t.Errorf("GetField on non-table error = %v; want ErrNotATable", err)
	}
}
