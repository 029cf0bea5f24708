package cpu

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/inst"
)

func TestRegisterAccess(t *testing.T) {
	s := NewState(DefaultStackCapacity)
	for r := inst.Register(0); r < inst.RegisterCount; r++ {
		if s.Get(r) != 0 {
			t.Errorf("%s not zeroed", r)
		}
		s.Set(r, uint64(r)*1000+7)
	}
	for r := inst.Register(0); r < inst.RegisterCount; r++ {
		if got := s.Get(r); got != uint64(r)*1000+7 {
			t.Errorf("%s = %d, want %d", r, got, uint64(r)*1000+7)
		}
	}
	if s.IP != 4007 || s.SP != 5007 {
		t.Errorf("control registers not backed by fields: IP=%d SP=%d", s.IP, s.SP)
	}
}

func TestInvalidRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Get on invalid register did not panic")
		}
	}()
	s := NewState(1)
	s.Get(inst.RegisterCount)
}

func TestPushPopBounds(t *testing.T) {
	s := NewState(3)
	for i := uint64(1); i <= 3; i++ {
		if err := s.Push(i * 10); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	err := s.Push(40)
	if !errors.Is(err, ErrStackFault) {
		t.Fatalf("push on full stack: got %v, want stack fault", err)
	}
	if s.SP != 3 {
		t.Errorf("failed push moved SP to %d", s.SP)
	}
	if live := s.Live(); len(live) != 3 || live[2] != 30 {
		t.Errorf("Live() = %v", live)
	}

	for i := uint64(3); i >= 1; i-- {
		v, err := s.Pop()
		if err != nil || v != i*10 {
			t.Fatalf("pop: got %d, %v; want %d", v, err, i*10)
		}
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackFault) {
		t.Errorf("pop on empty stack: got %v, want stack fault", err)
	}
	if s.SP != 0 {
		t.Errorf("failed pop moved SP to %d", s.SP)
	}
}

// TestPopWithWildSP checks a program-written SP beyond capacity faults
// instead of indexing out of range.
func TestPopWithWildSP(t *testing.T) {
	s := NewState(4)
	s.SP = 1000
	if _, err := s.Pop(); KindOf(err) != StackFault {
		t.Errorf("pop at SP=1000: got %v", err)
	}
	if err := s.Push(1); KindOf(err) != StackFault {
		t.Errorf("push at SP=1000: got %v", err)
	}
	if len(s.Live()) != 4 {
		t.Errorf("Live() with wild SP has %d words", len(s.Live()))
	}
}

func TestCloneAndEqual(t *testing.T) {
	s := NewState(2)
	s.A = 1
	_ = s.Push(99)
	c := s.Clone()
	if !c.Equal(s) {
		t.Fatal("clone differs from original")
	}
	c.Stack[0] = 5
	if s.Stack[0] != 99 {
		t.Error("clone shares stack storage")
	}
	if c.Equal(s) {
		t.Error("Equal ignored stack contents")
	}
}
