package inst

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape describes which Instruction fields an opcode uses.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeImm
	ShapeReg
	ShapeRegReg
	ShapeAddr
	ShapeOffset
)

// Info holds static metadata for an opcode.
type Info struct {
	Mnemonic string
	Shape    Shape
}

// Catalog maps each OpCode to its Info.
var Catalog = [OpCodeCount]Info{
	PUSH_I:  {"PUSHI", ShapeImm},
	PUSH_R:  {"PUSHR", ShapeReg},
	POP:     {"POP", ShapeReg},
	ADD:     {"ADD", ShapeRegReg},
	SUB:     {"SUB", ShapeRegReg},
	MUL:     {"MUL", ShapeRegReg},
	DIV:     {"DIV", ShapeRegReg},
	XOR:     {"XOR", ShapeRegReg},
	AND:     {"AND", ShapeRegReg},
	OR:      {"OR", ShapeRegReg},
	SHL:     {"SHL", ShapeRegReg},
	SHR:     {"SHR", ShapeRegReg},
	INP:     {"INP", ShapeReg},
	PRINT:   {"PRINT", ShapeReg},
	EQ:      {"EQ", ShapeRegReg},
	GT:      {"GT", ShapeRegReg},
	LT:      {"LT", ShapeRegReg},
	JMP:     {"JMP", ShapeAddr},
	JMP_REL: {"JMPREL", ShapeOffset},
	CALL:    {"CALL", ShapeAddr},
	RET:     {"RET", ShapeNone},
	HALT:    {"HALT", ShapeNone},
}

// String returns the opcode mnemonic.
func (op OpCode) String() string {
	if op < OpCodeCount {
		return Catalog[op].Mnemonic
	}
	return "OP(" + strconv.Itoa(int(op)) + ")"
}

// AllOps returns all valid OpCode values.
func AllOps() []OpCode {
	ops := make([]OpCode, 0, OpCodeCount)
	for i := OpCode(0); i < OpCodeCount; i++ {
		ops = append(ops, i)
	}
	return ops
}

// Disassemble returns a readable rendering of an instruction, e.g. "ADD A, B"
// or "PUSHI 0x2e". It is meant for traces and listings; there is no parser
// for this form.
func Disassemble(instr Instruction) string {
	if instr.Op >= OpCodeCount {
		return instr.Op.String()
	}
	info := &Catalog[instr.Op]
	switch info.Shape {
	case ShapeImm:
		return info.Mnemonic + " " + hexImm(instr.Imm)
	case ShapeReg:
		return info.Mnemonic + " " + instr.L.String()
	case ShapeRegReg:
		return info.Mnemonic + " " + instr.L.String() + ", " + instr.R.String()
	case ShapeAddr:
		return info.Mnemonic + " " + strconv.FormatUint(instr.Imm, 10)
	case ShapeOffset:
		off := instr.Offset()
		if off >= 0 {
			return info.Mnemonic + " +" + strconv.FormatInt(off, 10)
		}
		return info.Mnemonic + " " + strconv.FormatInt(off, 10)
	}
	return info.Mnemonic
}

// DisassembleProgram renders a whole program, one "addr: instr" line each.
func DisassembleProgram(program []Instruction) string {
	var sb strings.Builder
	width := len(strconv.Itoa(len(program) - 1))
	for addr, instr := range program {
		fmt.Fprintf(&sb, "%*d: %s\n", width, addr, Disassemble(instr))
	}
	return sb.String()
}

func hexImm(v uint64) string {
	if v < 10 {
		return strconv.FormatUint(v, 10)
	}
	return "0x" + strconv.FormatUint(v, 16)
}

// Validate checks that every instruction has a known opcode and that the
// register operands its shape uses are in range. Jump targets are checked at
// run time, not here.
func Validate(program []Instruction) error {
	for addr, instr := range program {
		if instr.Op >= OpCodeCount {
			return fmt.Errorf("instruction %d: unknown opcode %d", addr, instr.Op)
		}
		switch Catalog[instr.Op].Shape {
		case ShapeRegReg:
			if !instr.R.Valid() {
				return fmt.Errorf("instruction %d (%s): invalid right register %d", addr, instr.Op, instr.R)
			}
			fallthrough
		case ShapeReg:
			if !instr.L.Valid() {
				return fmt.Errorf("instruction %d (%s): invalid register %d", addr, instr.Op, instr.L)
			}
		}
	}
	return nil
}
