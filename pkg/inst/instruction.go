package inst

// Register names one of the six machine registers. IP and SP are addressable
// exactly like the general-purpose registers.
type Register uint8

const (
	A Register = iota
	B
	C
	D
	IP // Instruction pointer
	SP // Stack pointer

	RegisterCount
)

var registerNames = [RegisterCount]string{"A", "B", "C", "D", "IP", "SP"}

// String returns the register name.
func (r Register) String() string {
	if r < RegisterCount {
		return registerNames[r]
	}
	return "R?"
}

// Valid reports whether r names an existing register.
func (r Register) Valid() bool {
	return r < RegisterCount
}

// OpCode identifies a machine operation.
type OpCode uint8

// Instruction is one decoded instruction. Which fields are meaningful depends
// on the opcode's Shape (see Catalog):
//
//	ShapeImm:    Imm is the value pushed
//	ShapeReg:    L is the register operand
//	ShapeRegReg: L is the destination (left) register, R the source (right)
//	ShapeAddr:   Imm is an absolute program address
//	ShapeOffset: Imm is a two's-complement offset relative to IP
type Instruction struct {
	Op  OpCode
	L   Register
	R   Register
	Imm uint64
}

// OpCode constants, grouped the way the dispatcher handles them.
const (
	// Stack
	PUSH_I OpCode = iota
	PUSH_R
	POP

	// Two-register arithmetic and logic: L = L op R
	ADD
	SUB
	MUL
	DIV
	XOR
	AND
	OR
	SHL
	SHR

	// I/O
	INP
	PRINT

	// Skip-if-false comparisons
	EQ
	GT
	LT

	// Control flow
	JMP
	JMP_REL
	CALL
	RET
	HALT

	OpCodeCount
)

// IsALU returns true for the two-register arithmetic and logic ops.
func IsALU(op OpCode) bool {
	return op >= ADD && op <= SHR
}

// IsCompare returns true for the skip-if-false comparisons.
func IsCompare(op OpCode) bool {
	return op >= EQ && op <= LT
}

// IsJump returns true for ops that transfer control unconditionally.
func IsJump(op OpCode) bool {
	return op >= JMP && op <= RET
}

// Constructors. Programs are usually built as []Instruction literals from
// these.

func PushI(imm uint64) Instruction  { return Instruction{Op: PUSH_I, Imm: imm} }
func PushR(r Register) Instruction  { return Instruction{Op: PUSH_R, L: r} }
func Pop(r Register) Instruction    { return Instruction{Op: POP, L: r} }
func Add(l, r Register) Instruction { return Instruction{Op: ADD, L: l, R: r} }
func Sub(l, r Register) Instruction { return Instruction{Op: SUB, L: l, R: r} }
func Mul(l, r Register) Instruction { return Instruction{Op: MUL, L: l, R: r} }
func Div(l, r Register) Instruction { return Instruction{Op: DIV, L: l, R: r} }
func Xor(l, r Register) Instruction { return Instruction{Op: XOR, L: l, R: r} }
func And(l, r Register) Instruction { return Instruction{Op: AND, L: l, R: r} }
func Or(l, r Register) Instruction  { return Instruction{Op: OR, L: l, R: r} }
func Shl(l, r Register) Instruction { return Instruction{Op: SHL, L: l, R: r} }
func Shr(l, r Register) Instruction { return Instruction{Op: SHR, L: l, R: r} }
func Inp(r Register) Instruction    { return Instruction{Op: INP, L: r} }
func Print(r Register) Instruction  { return Instruction{Op: PRINT, L: r} }
func Eq(l, r Register) Instruction  { return Instruction{Op: EQ, L: l, R: r} }
func Gt(l, r Register) Instruction  { return Instruction{Op: GT, L: l, R: r} }
func Lt(l, r Register) Instruction  { return Instruction{Op: LT, L: l, R: r} }
func Jmp(addr uint64) Instruction   { return Instruction{Op: JMP, Imm: addr} }
func Call(addr uint64) Instruction  { return Instruction{Op: CALL, Imm: addr} }
func Ret() Instruction              { return Instruction{Op: RET} }
func Halt() Instruction             { return Instruction{Op: HALT} }

// JmpRel jumps off instructions away from the JmpRel itself. Negative offsets
// jump backwards.
func JmpRel(off int64) Instruction { return Instruction{Op: JMP_REL, Imm: uint64(off)} }

// Offset returns Imm reinterpreted as a signed offset.
func (i Instruction) Offset() int64 {
	return int64(i.Imm)
}
