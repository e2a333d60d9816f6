package luavm

import (
	"errors"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack(4)
	if err := s.Push(int64(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(int64(2)); err != nil {
		t.Fatal(err)
	}
	if s.Top() != 2 {
		t.Fatalf("Top() = %d; want 2", s.Top())
	}
	v, err := s.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(2) {
		t.Fatalf("Pop() = %v; want 2", v)
	}
	if s.Top() != 1 {
		t.Fatalf("Top() = %d; want 1", s.Top())
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack(1)
	if err := s.Push(int64(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(int64(2)); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("Push() error = %v; want ErrStackOverflow", err)
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack(1)
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Pop() error = %v; want ErrStackUnderflow", err)
	}
}

func TestStackGetOutOfRangeReturnsNilNotError(t *testing.T) {
	s := NewStack(4)
	s.Push(int64(1))
	if got := s.Get(5); got != nil {
		t.Errorf("Get(5) = %v; want nil", got)
	}
	if got := s.Get(-10); got != nil {
		t.Errorf("Get(-10) = %v; want nil", got)
	}
}

func TestStackSetOutOfRangeErrors(t *testing.T) {
	s := NewStack(4)
	s.Push(int64(1))
	if err := s.Set(5, int64(9)); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Set(5, ...) error = %v; want ErrInvalidIndex", err)
	}
}

func TestStackNegativeIndexing(t *testing.T) {
	s := NewStack(4)
	s.Push("a")
	s.Push("b")
	s.Push("c")
	if got := s.Get(-1); got != "c" {
		t.Errorf("Get(-1) = %v; want \"c\"", got)
	}
	if got := s.Get(-3); got != "a" {
		t.Errorf("Get(-3) = %v; want \"a\"", got)
	}
}

func TestStackSetTopGrowsWithNil(t *testing.T) {
	s := NewStack(4)
	s.Push(int64(1))
	if err := s.SetTop(3); err != nil {
		t.Fatal(err)
	}
	if s.Top() != 3 {
		t.Fatalf("Top() = %d; want 3", s.Top())
	}
	if got := s.Get(2); got != nil {
		t.Errorf("Get(2) = %v; want nil", got)
	}
}

func TestStackSetTopIdempotent(t *testing.T) {
	s := NewStack(4)
	s.Push(int64(1))
	s.Push(int64(2))
	top := s.Top()
	if err := s.SetTop(top); err != nil {
		t.Fatal(err)
	}
	if s.Top() != top {
		t.Errorf("SetTop(Top()) changed Top(): got %d, want %d", s.Top(), top)
	}
}

func TestStackReverse(t *testing.T) {
	s := NewStack(4)
	s.Push(int64(1))
	s.Push(int64(2))
	s.Push(int64(3))
	s.Reverse(1, 3)
	if s.Get(1) != int64(3) || s.Get(2) != int64(2) || s.Get(3) != int64(1) {
		t.Errorf("Reverse(1,3) = [%v,%v,%v]; want [3,2,1]", s.Get(1), s.Get(2), s.Get(3))
	}
}

func TestStackRotate(t *testing.T) {
	s := NewStack(8)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		s.Push(v)
	}
	if err := s.Rotate(1, 2); err != nil {
		t.Fatal(err)
	}
	want := []int64{4, 5, 1, 2, 3}
	for i, w := range want {
		if got := s.Get(i + 1); got != w {
			t.Errorf("after Rotate(1,2), Get(%d) = %v; want %v", i+1, got, w)
		}
	}
}

func TestStackRotateRoundTrip(t *testing.T) {
	s := NewStack(8)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		s.Push(v)
	}
	if err := s.Rotate(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Rotate(1, -2); err != nil {
		t.Fatal(err)
	}
	for i, want := range []int64{1, 2, 3, 4, 5} {
		if got := s.Get(i + 1); got != want {
			t.Errorf("after round trip, Get(%d) = %v; want %v", i+1, got, want)
		}
	}
}

func TestStackCheckGrowsCapacity(t *testing.T) {
	s := NewStack(2)
	s.Push(int64(1))
	s.Push(int64(2))
	if err := s.Check(5); err != nil {
		t.Fatal(err)
	}
	if s.Cap() < 7 {
		t.Errorf("Cap() = %d; want at least 7", s.Cap())
	}
	if err := s.Push(int64(3)); err != nil {
		t.Errorf("Push after Check() failed: %v", err)
	}
}
