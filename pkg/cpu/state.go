package cpu

import "github.com/oisee/regvm/pkg/inst"

const (
	// DefaultStackCapacity is the number of words on the operand stack.
	DefaultStackCapacity = 255

	// WordBits is the register width. Shift amounts must be below it.
	WordBits = 64
)

// State is the complete mutable machine state: the register file, the
// operand stack and the halt flag.
//
// Stack has a fixed length (the capacity); only Stack[:SP] is live.
type State struct {
	A, B, C, D uint64
	IP         uint64
	SP         uint64
	Stack      []uint64
	Halted     bool
}

// NewState returns a zeroed state with an operand stack of the given capacity.
func NewState(capacity int) State {
	return State{Stack: make([]uint64, capacity)}
}

// Get returns the value of register r.
func (s *State) Get(r inst.Register) uint64 {
	switch r {
	case inst.A:
		return s.A
	case inst.B:
		return s.B
	case inst.C:
		return s.C
	case inst.D:
		return s.D
	case inst.IP:
		return s.IP
	case inst.SP:
		return s.SP
	}
	panic("cpu: invalid register " + r.String())
}

// Set stores v into register r.
func (s *State) Set(r inst.Register, v uint64) {
	switch r {
	case inst.A:
		s.A = v
	case inst.B:
		s.B = v
	case inst.C:
		s.C = v
	case inst.D:
		s.D = v
	case inst.IP:
		s.IP = v
	case inst.SP:
		s.SP = v
	default:
		panic("cpu: invalid register " + r.String())
	}
}

// Capacity returns the operand stack capacity.
func (s *State) Capacity() int {
	return len(s.Stack)
}

// Push writes v at SP and increments SP.
func (s *State) Push(v uint64) error {
	if s.SP >= uint64(len(s.Stack)) {
		return newFault(StackFault, "push at sp=%d, capacity %d", s.SP, len(s.Stack))
	}
	s.Stack[s.SP] = v
	s.SP++
	return nil
}

// Pop decrements SP and returns the word stored there.
func (s *State) Pop() (uint64, error) {
	v, err := s.Peek()
	if err != nil {
		return 0, err
	}
	s.SP--
	return v, nil
}

// Peek returns the word Pop would return without changing SP.
func (s *State) Peek() (uint64, error) {
	if s.SP == 0 {
		return 0, newFault(StackFault, "pop from empty stack")
	}
	if s.SP > uint64(len(s.Stack)) {
		return 0, newFault(StackFault, "pop at sp=%d, capacity %d", s.SP, len(s.Stack))
	}
	return s.Stack[s.SP-1], nil
}

// Live returns the occupied part of the stack, bottom first. The result
// aliases the state.
func (s *State) Live() []uint64 {
	if s.SP > uint64(len(s.Stack)) {
		return s.Stack
	}
	return s.Stack[:s.SP]
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Stack = make([]uint64, len(s.Stack))
	copy(c.Stack, s.Stack)
	return c
}

// Equal returns true if two states are identical, including stack contents.
func (s State) Equal(o State) bool {
	if s.A != o.A || s.B != o.B || s.C != o.C || s.D != o.D ||
		s.IP != o.IP || s.SP != o.SP || s.Halted != o.Halted ||
		len(s.Stack) != len(o.Stack) {
		return false
	}
	for i := range s.Stack {
		if s.Stack[i] != o.Stack[i] {
			return false
		}
	}
	return true
}
