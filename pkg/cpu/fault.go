package cpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/inst"
)

// FaultKind classifies a fatal execution fault.
type FaultKind uint8

const (
	InvalidAddress     FaultKind = iota + 1 // IP or a jump target outside the program
	StackFault                              // push on a full stack, pop on an empty one
	ArithmeticFault                         // division by zero, shift >= WordBits
	InputExhausted                          // read past the end of input
	IllegalInstruction                      // unknown opcode reached Exec
	StepLimit                               // MaxSteps instructions executed without halting
)

// Sentinel errors, one per fault kind. A *Fault matches its kind's sentinel
// under errors.Is.
var (
	ErrInvalidAddress     = errors.New("invalid address")
	ErrStackFault         = errors.New("stack fault")
	ErrArithmeticFault    = errors.New("arithmetic fault")
	ErrInputExhausted     = errors.New("input exhausted")
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrStepLimit          = errors.New("step limit exceeded")

	// ErrStopped is returned by Step on a machine that already halted or
	// faulted. It is not a fault.
	ErrStopped = errors.New("machine stopped")
)

var kindErrors = [...]error{
	InvalidAddress:     ErrInvalidAddress,
	StackFault:         ErrStackFault,
	ArithmeticFault:    ErrArithmeticFault,
	InputExhausted:     ErrInputExhausted,
	IllegalInstruction: ErrIllegalInstruction,
	StepLimit:          ErrStepLimit,
}

func (k FaultKind) sentinel() error {
	if int(k) < len(kindErrors) && kindErrors[k] != nil {
		return kindErrors[k]
	}
	return nil
}

// String returns the kind's description.
func (k FaultKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("fault(%d)", uint8(k))
}

// Fault is the error returned when execution stops abnormally. IP is the
// address of the faulting instruction, or the out-of-range fetch address
// when the fault happened before any instruction was decoded (Fetch).
type Fault struct {
	Kind  FaultKind
	IP    uint64
	Instr inst.Instruction
	Fetch bool
	Err   error
}

func newFault(kind FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Err: errors.Errorf(format, args...)}
}

func (f *Fault) Error() string {
	where := fmt.Sprintf("at %d", f.IP)
	if !f.Fetch {
		where += " (" + inst.Disassemble(f.Instr) + ")"
	}
	if f.Err == nil {
		return f.Kind.String() + " " + where
	}
	return f.Kind.String() + " " + where + ": " + f.Err.Error()
}

// Unwrap returns the underlying cause, if any.
func (f *Fault) Unwrap() error { return f.Err }

// Is matches the sentinel error of the fault's kind.
func (f *Fault) Is(target error) bool {
	return target != nil && target == f.Kind.sentinel()
}

// KindOf returns the fault kind carried by err, or 0 if err is not a fault.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
