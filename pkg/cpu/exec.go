package cpu

import (
	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/inst"
)

// Channel is the byte I/O device the machine reads from (Inp) and writes to
// (Print). ReadByte blocks until a byte is available; io.EOF means the input
// is exhausted. WriteChar has no way to push back: a channel that can fail
// must record the error itself.
type Channel interface {
	ReadByte() (byte, error)
	WriteChar(c byte)
}

// Exec executes a single instruction on the given state. s.IP must be the
// address of instr and codeLen the program length (used to check control
// transfers).
//
// On success IP is advanced past the instruction: by one, by two when a
// comparison fails, or to the transfer target. A Halt leaves IP on the Halt.
// On failure the returned error is a *Fault and s is left exactly as it was
// before the call.
func Exec(s *State, instr inst.Instruction, ch Channel, codeLen int) error {
	next := uint64(1)
	var err error

	switch instr.Op {
	// === Stack ===
	case inst.PUSH_I:
		err = s.Push(instr.Imm)
	case inst.PUSH_R:
		err = s.Push(s.Get(instr.L))
	case inst.POP:
		var v uint64
		if v, err = s.Pop(); err == nil {
			s.Set(instr.L, v)
		}

	// === Arithmetic and logic ===
	case inst.ADD, inst.SUB, inst.MUL, inst.DIV, inst.XOR, inst.AND, inst.OR, inst.SHL, inst.SHR:
		err = execALU(s, instr)

	// === I/O ===
	case inst.INP:
		err = execInp(s, instr.L, ch)
	case inst.PRINT:
		ch.WriteChar(byte(s.Get(instr.L)))

	// === Comparisons: skip the next instruction unless the relation holds ===
	case inst.EQ:
		if s.Get(instr.L) != s.Get(instr.R) {
			next = 2
		}
	case inst.GT:
		if s.Get(instr.L) <= s.Get(instr.R) {
			next = 2
		}
	case inst.LT:
		if s.Get(instr.L) >= s.Get(instr.R) {
			next = 2
		}

	// === Control flow ===
	case inst.JMP:
		err = jumpTo(s, instr.Imm, codeLen)
	case inst.JMP_REL:
		err = jumpTo(s, s.IP+instr.Imm, codeLen)
	case inst.CALL:
		if err = checkAddr(instr.Imm, codeLen); err == nil {
			if err = s.Push(s.IP + 1); err == nil {
				err = jumpTo(s, instr.Imm, codeLen)
			}
		}
	case inst.RET:
		var ret uint64
		if ret, err = s.Peek(); err == nil {
			if err = checkAddr(ret, codeLen); err == nil {
				s.SP--
				err = jumpTo(s, ret, codeLen)
			}
		}
	case inst.HALT:
		s.Halted = true
		return nil

	default:
		err = newFault(IllegalInstruction, "opcode %d", uint8(instr.Op))
	}

	if err != nil {
		var f *Fault
		if !errors.As(err, &f) {
			f = &Fault{Kind: IllegalInstruction, Err: err}
		}
		f.IP = s.IP
		f.Instr = instr
		return f
	}
	s.IP += next
	return nil
}

// execALU computes L = L op R. R is never written (unless it is L).
func execALU(s *State, instr inst.Instruction) error {
	l, r := s.Get(instr.L), s.Get(instr.R)
	var v uint64
	switch instr.Op {
	case inst.ADD:
		v = l + r
	case inst.SUB:
		v = l - r
	case inst.MUL:
		v = l * r
	case inst.DIV:
		if r == 0 {
			return newFault(ArithmeticFault, "division by zero")
		}
		v = l / r
	case inst.XOR:
		v = l ^ r
	case inst.AND:
		v = l & r
	case inst.OR:
		v = l | r
	case inst.SHL:
		if r >= WordBits {
			return newFault(ArithmeticFault, "shift by %d", r)
		}
		v = l << r
	case inst.SHR:
		if r >= WordBits {
			return newFault(ArithmeticFault, "shift by %d", r)
		}
		v = l >> r
	}
	s.Set(instr.L, v)
	return nil
}

// execInp reads one byte into r, discarding carriage returns.
func execInp(s *State, r inst.Register, ch Channel) error {
	for {
		b, err := ch.ReadByte()
		if err != nil {
			return &Fault{Kind: InputExhausted, Err: errors.WithStack(err)}
		}
		if b == '\r' {
			continue
		}
		s.Set(r, uint64(b))
		return nil
	}
}

func checkAddr(addr uint64, codeLen int) error {
	if addr >= uint64(codeLen) {
		return newFault(InvalidAddress, "target %d outside program of %d instructions", addr, codeLen)
	}
	return nil
}

// jumpTo makes execution continue at addr. IP is set one short of the target
// so the post-increment in Exec lands on it.
func jumpTo(s *State, addr uint64, codeLen int) error {
	if err := checkAddr(addr, codeLen); err != nil {
		return err
	}
	s.IP = addr - 1
	return nil
}
