package batch

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

// upper prints the first input byte minus 32, or faults on empty input.
var upper = []inst.Instruction{
	inst.Inp(inst.A),
	inst.PushI(32),
	inst.Pop(inst.B),
	inst.Sub(inst.A, inst.B),
	inst.Print(inst.A),
	inst.Halt(),
}

func TestPoolRun(t *testing.T) {
	var inputs [][]byte
	for c := byte('a'); c <= 'z'; c++ {
		inputs = append(inputs, []byte{c})
	}
	inputs = append(inputs, nil)

	p := NewPool(4)
	outs, err := p.Run(upper, inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 27 {
		t.Fatalf("got %d outcomes", len(outs))
	}
	for i, o := range outs[:26] {
		if o.Index != i || !o.Halted() {
			t.Errorf("outcome %d: index %d err %v", i, o.Index, o.Err)
		}
		if want := fmt.Sprintf("%c", 'A'+i); string(o.Output) != want {
			t.Errorf("input %q: output %q, want %q", o.Input, o.Output, want)
		}
		if o.Steps != 6 {
			t.Errorf("input %q: %d steps", o.Input, o.Steps)
		}
	}
	if last := outs[26]; !errors.Is(last.Err, cpu.ErrInputExhausted) {
		t.Errorf("empty input: got %v", last.Err)
	}

	halted, faulted := p.Stats()
	if halted != 26 || faulted != 1 {
		t.Errorf("stats = %d halted, %d faulted", halted, faulted)
	}
	if n := len(Halting(outs)); n != 26 {
		t.Errorf("Halting returned %d outcomes", n)
	}
}

func TestPoolOptions(t *testing.T) {
	loop := []inst.Instruction{inst.Jmp(0)}
	p := NewPool(0, cpu.MaxSteps(50))
	if p.NumWorkers <= 0 {
		t.Fatalf("NumWorkers = %d", p.NumWorkers)
	}
	outs, err := p.Run(loop, [][]byte{nil, nil, nil})
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range outs {
		if !errors.Is(o.Err, cpu.ErrStepLimit) || o.Steps != 50 {
			t.Errorf("outcome %d: %v after %d steps", o.Index, o.Err, o.Steps)
		}
	}
}

func TestPoolRejects(t *testing.T) {
	p := NewPool(2)
	if _, err := p.Run([]inst.Instruction{{Op: inst.OpCodeCount}}, [][]byte{nil}); err == nil {
		t.Error("invalid program accepted")
	}
	p = NewPool(2, cpu.StackCapacity(-1))
	if _, err := p.Run(upper, [][]byte{nil}); err == nil {
		t.Error("invalid option accepted")
	}
}
