package luavalue

import (
	"errors"
	"testing"
)

func TestIntArithFloorDivAndMod(t *testing.T) {
	tests := []struct {
		a, b     int64
		wantIdiv int64
		wantMod  int64
	}{
		{7, 3, 2, 1},
		{-7, 3, -3, 2},
		{7, -3, -3, -2},
		{-7, -3, 2, -1},
	}
	for _, test := range tests {
		q, err := Arith(OpIDiv, test.a, test.b)
		if err != nil {
			t.Fatalf("Arith(OpIDiv, %d, %d) error = %v", test.a, test.b, err)
		}
		if q != test.wantIdiv {
			t.Errorf("idiv(%d,%d) = %v; want %d", test.a, test.b, q, test.wantIdiv)
		}
		m, err := Arith(OpMod, test.a, test.b)
		if err != nil {
			t.Fatalf("Arith(OpMod, %d, %d) error = %v", test.a, test.b, err)
		}
		if m != test.wantMod {
			t.Errorf("mod(%d,%d) = %v; want %d", test.a, test.b, m, test.wantMod)
		}
		// idiv(a,b)*b + mod(a,b) == a (spec.md §8 property 3).
		if qi, mi := q.(int64), m.(int64); qi*test.b+mi != test.a {
			t.Errorf("identity violated: %d*%d + %d != %d", qi, test.b, mi, test.a)
		}
	}
}

func TestIntArithDivideByZero(t *testing.T) {
	if _, err := Arith(OpIDiv, int64(1), int64(0)); !errors.Is(err, ErrArithmetic) {
		t.Errorf("Arith(OpIDiv, 1, 0) error = %v; want ErrArithmetic", err)
	}
	if _, err := Arith(OpMod, int64(1), int64(0)); !errors.Is(err, ErrArithmetic) {
		t.Errorf("Arith(OpMod, 1, 0) error = %v; want ErrArithmetic", err)
	}
}

func TestShiftLeftAndRight(t *testing.T) {
	tests := []struct {
		a, n int64
		want int64
	}{
		{1, 1, 2},
		{1, -1, 0},
		{-1, 1, -2}, // left shift is bitwise, sign bit just shifts
		{1, 64, 0},
		{1, -64, 0},
	}
	for _, test := range tests {
		if got := shiftLeft(test.a, test.n); got != test.want {
			t.Errorf("shiftLeft(%d, %d) = %d; want %d", test.a, test.n, got, test.want)
		}
	}
}

func TestShiftIsLogicalNotArithmetic(t *testing.T) {
	// Right-shifting -1 (all bits set) logically by 63 must yield 1,
	// not -1 as a signed arithmetic shift would.
	got, err := Arith(OpShr, int64(-1), int64(63))
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(1) {
		t.Errorf("shr(-1, 63) = %v; want 1", got)
	}
}

func TestShlEqualsNegativeShr(t *testing.T) {
	for n := int64(0); n < 64; n++ {
		a := int64(-12345)
		shl, err := Arith(OpShl, a, n)
		if err != nil {
			t.Fatal(err)
		}
		shr, err := Arith(OpShr, a, -n)
		if err != nil {
			t.Fatal(err)
		}
		if shl != shr {
			t.Errorf("shl(a,%d) = %v != shr(a,%d) = %v", n, shl, -n, shr)
		}
	}
}

func TestArithPreservesFloatSubtypeAcrossStringCoercion(t *testing.T) {
	// "3.0" + 4.0 must produce a float, not an integer, even though
	// both operands are exactly representable as integers (spec.md §8
	// scenario 3).
	got, err := Arith(OpAdd, "3.0", 4.0)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := got.(float64)
	if !ok {
		t.Fatalf("Arith(OpAdd, \"3.0\", 4.0) = %#v; want a float64", got)
	}
	if f != 7.0 {
		t.Fatalf("Arith(OpAdd, \"3.0\", 4.0) = %v; want 7.0", f)
	}

	// BNOT on that same float still succeeds via ToInteger's
	// round-trip rule (unlike the arithmetic-coercion rule above).
	got, err = Arith(OpBNot, f, nil)
	if err != nil {
		t.Fatalf("Arith(OpBNot, 7.0, nil) error = %v", err)
	}
	if got != int64(-8) {
		t.Fatalf("Arith(OpBNot, 7.0, nil) = %v; want -8", got)
	}
}

func TestArithIntegerStringsStayInteger(t *testing.T) {
	got, err := Arith(OpAdd, "2", "3")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(5) {
		t.Fatalf("Arith(OpAdd, \"2\", \"3\") = %#v; want int64(5)", got)
	}
}

func TestArithDivAndPowAreAlwaysFloat(t *testing.T) {
	got, err := Arith(OpDiv, int64(4), int64(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(float64); !ok {
		t.Errorf("Arith(OpDiv, 4, 2) = %#v; want a float64", got)
	}
	got, err = Arith(OpPow, int64(4), int64(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(float64); !ok {
		t.Errorf("Arith(OpPow, 4, 2) = %#v; want a float64", got)
	}
}

func TestInt2fbRoundTrip(t *testing.T) {
	for x := 0; x < 16; x++ {
		if got := fb2int(int2fb(x)); got != x {
			t.Errorf("fb2int(int2fb(%d)) = %d; want %d", x, got, x)
		}
	}
}
