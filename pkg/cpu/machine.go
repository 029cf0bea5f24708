package cpu

import (
	"io"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/oisee/regvm/pkg/inst"
)

// Status is the machine's position in its lifecycle.
type Status uint8

const (
	Ready   Status = iota // constructed, nothing executed
	Running               // at least one step executed, not terminal
	Halted                // executed a Halt
	Faulted               // stopped on a Fault
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// Tracer observes every successfully executed instruction. addr is the
// address the instruction was fetched from; s is the state after execution
// and must not be retained.
type Tracer interface {
	Trace(step uint64, addr uint64, instr inst.Instruction, s *State)
}

// Machine runs one program to completion.
type Machine struct {
	state    State
	code     []inst.Instruction
	ch       Channel
	status   Status
	fault    *Fault
	steps    uint64
	maxSteps uint64
	tracer   Tracer
	log      commonlog.Logger
}

// Option configures a Machine in New.
type Option func(*Machine) error

// StackCapacity sets the operand stack size. The default is
// DefaultStackCapacity words.
func StackCapacity(n int) Option {
	return func(m *Machine) error {
		if n <= 0 {
			return errors.Errorf("stack capacity must be positive, got %d", n)
		}
		m.state.Stack = make([]uint64, n)
		return nil
	}
}

// MaxSteps bounds the number of instructions Run executes. When the bound is
// reached the machine faults with StepLimit. Zero, the default, means no limit.
func MaxSteps(n uint64) Option {
	return func(m *Machine) error { m.maxSteps = n; return nil }
}

// WithTracer installs a per-instruction observer.
func WithTracer(t Tracer) Option {
	return func(m *Machine) error { m.tracer = t; return nil }
}

// WithLogger replaces the default "regvm.cpu" logger.
func WithLogger(l commonlog.Logger) Option {
	return func(m *Machine) error { m.log = l; return nil }
}

type nullChannel struct{}

func (nullChannel) ReadByte() (byte, error) { return 0, io.EOF }
func (nullChannel) WriteChar(byte)          {}

// New creates a machine for program with all registers and the stack zeroed.
// The program is copied and validated with inst.Validate. A nil channel
// behaves as an empty input and a discarding output.
func New(program []inst.Instruction, ch Channel, opts ...Option) (*Machine, error) {
	if err := inst.Validate(program); err != nil {
		return nil, errors.Wrap(err, "invalid program")
	}
	if ch == nil {
		ch = nullChannel{}
	}
	m := &Machine{
		state: NewState(DefaultStackCapacity),
		code:  append([]inst.Instruction(nil), program...),
		ch:    ch,
		log:   commonlog.GetLogger("regvm.cpu"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Step fetches and executes one instruction. It returns nil after a normal
// step or a Halt, the *Fault that stopped the machine, or ErrStopped if the
// machine had already halted or faulted.
func (m *Machine) Step() error {
	if m.status == Halted || m.status == Faulted {
		return ErrStopped
	}
	m.status = Running

	addr := m.state.IP
	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		return m.fail(&Fault{
			Kind:  StepLimit,
			IP:    addr,
			Fetch: true,
			Err:   errors.Errorf("%d instructions executed", m.steps),
		})
	}
	if addr >= uint64(len(m.code)) {
		return m.fail(&Fault{
			Kind:  InvalidAddress,
			IP:    addr,
			Fetch: true,
			Err:   errors.Errorf("fetch outside program of %d instructions", len(m.code)),
		})
	}
	instr := m.code[addr]
	if m.log.AllowLevel(commonlog.Debug) {
		m.log.Debugf("%04d  %-14s A=%x B=%x C=%x D=%x SP=%d",
			addr, inst.Disassemble(instr), m.state.A, m.state.B, m.state.C, m.state.D, m.state.SP)
	}

	if err := Exec(&m.state, instr, m.ch, len(m.code)); err != nil {
		return m.fail(err.(*Fault))
	}
	m.steps++
	if m.tracer != nil {
		m.tracer.Trace(m.steps, addr, instr, &m.state)
	}
	if m.state.Halted {
		m.status = Halted
		m.log.Infof("halted at %d after %d steps", addr, m.steps)
	}
	return nil
}

func (m *Machine) fail(f *Fault) error {
	m.status = Faulted
	m.fault = f
	m.log.Infof("%s after %d steps", f, m.steps)
	return f
}

// Run executes instructions until the machine halts (nil) or faults (*Fault).
// Running a machine that already stopped returns the same result again
// without executing anything.
func (m *Machine) Run() error {
	for {
		switch m.status {
		case Halted:
			return nil
		case Faulted:
			return m.fault
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// Status returns the lifecycle status.
func (m *Machine) Status() Status { return m.status }

// Halted reports whether the halt flag is set.
func (m *Machine) Halted() bool { return m.state.Halted }

// Fault returns the fault that stopped the machine, or nil.
func (m *Machine) Fault() *Fault { return m.fault }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 { return m.steps }

// Get returns the current value of register r.
func (m *Machine) Get(r inst.Register) uint64 { return m.state.Get(r) }

// State returns a copy of the machine state. After a fault it is the state
// as of the faulting instruction, with nothing from that instruction applied.
func (m *Machine) State() State { return m.state.Clone() }

// Program returns a copy of the loaded program.
func (m *Machine) Program() []inst.Instruction {
	return append([]inst.Instruction(nil), m.code...)
}
