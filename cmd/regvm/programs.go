package main

import (
	"sort"

	"github.com/pkg/errors"

	. "github.com/oisee/regvm/pkg/inst"
)

type builtin struct {
	Summary string
	Build   func() []Instruction
}

var builtins = map[string]builtin{
	"hello":     {"print a greeting", hello},
	"echo":      {"copy input to output up to the first newline", echo},
	"countdown": {"print 9 down to 0 through a subroutine", countdown},
	"crackme":   {"reference challenge: reads a secret, prints Win or Lose", crackme},
}

func lookupProgram(name string) ([]Instruction, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, errors.Errorf("unknown program %q (see \"regvm list\")", name)
	}
	return b.Build(), nil
}

func programNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printString emits s one byte at a time through register A.
func printString(s string) []Instruction {
	prog := make([]Instruction, 0, 3*len(s))
	for i := 0; i < len(s); i++ {
		prog = append(prog, PushI(uint64(s[i])), Pop(A), Print(A))
	}
	return prog
}

func hello() []Instruction {
	return append(printString("Hello, world!\n"), Halt())
}

func echo() []Instruction {
	return []Instruction{
		Inp(A),
		Print(A),
		PushI('\n'),
		Pop(B),
		Eq(A, B),
		Halt(),
		Jmp(0),
	}
}

func countdown() []Instruction {
	return []Instruction{
		PushI(9), Pop(A), // counter
		PushI('0'), Pop(D),
		PushI(1), Pop(B),

		// 6: loop
		Call(15),
		Eq(A, C),
		Jmp(11),
		Sub(A, B),
		Jmp(6),

		// 11: done
		PushI('\n'), Pop(C), Print(C),
		Halt(),

		// 15: print the digit in A
		PushR(A),
		Add(A, D),
		Print(A),
		Pop(A),
		Ret(),
	}
}

// crackme checks the input in stages; any failed stage jumps to "lose".
// Stage three multiplies by IP, so instruction addresses are part of the
// secret and the listing must not be reordered.
func crackme() []Instruction {
	return []Instruction{
		// 0: stage one: four bytes
		PushI(8),
		Pop(A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		PushI(0xaa551337),
		Pop(D),
		Xor(C, D),
		PushI(0xcc397250),
		Pop(A),
		Eq(A, C),
		Jmp(33),

		// 20: lose
		PushI('L'),
		Pop(A),
		Print(A),
		PushI('o'),
		Pop(A),
		Print(A),
		PushI('s'),
		Pop(A),
		Print(A),
		PushI('e'),
		Pop(A),
		Print(A),
		Halt(),

		// 33: stage two: two bytes
		PushI(0x4444),
		Pop(A),
		PushI(0x3759),
		Pop(B),
		PushI(7),
		Pop(B),
		Mul(A, B),
		Or(A, B),
		PushI(3),
		Pop(B),
		Shr(A, B),
		Inp(B),
		PushI(8),
		Pop(C),
		Shl(B, C),
		Inp(D),
		Or(B, D),
		PushI(0x40cc),
		Pop(C),
		Xor(B, C),
		Eq(A, B),
		JmpRel(2),
		Jmp(20),

		// 56: stage three: six bytes
		PushI(8),
		Pop(A),
		PushI(0),
		Inp(B),
		Pop(C),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		PushR(C),
		Pop(D),
		PushI(0x561245),
		Pop(B),
		Mul(B, IP),
		Shl(B, A),
		Or(B, A),
		Xor(B, IP),
		PushI(0x233),
		Pop(A),
		Mul(B, A),
		Sub(C, B),
		Xor(C, D),
		PushI(13636),
		PushI(5492355013),
		Pop(A),
		Pop(B),
		Mul(A, B),
		Eq(A, C),
		JmpRel(2),
		Jmp(20),

		// 98: stage four: eight bytes
		Add(C, D),
		Mul(C, B),
		PushR(C),
		Pop(D),
		PushI(8),
		Pop(A),
		PushI(0),
		Inp(B),
		Pop(C),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Xor(D, C),
		PushR(D),
		PushI(261534559663319),
		Pop(B),
		PushR(B),
		Pop(D),
		PushI(20803),
		Pop(A),
		PushI(1),
		Pop(C),

		// 139: loop
		Eq(A, C),
		Jmp(148),
		Add(B, D),
		PushR(A),
		PushI(1),
		Pop(A),
		Add(C, A),
		Pop(A),
		Jmp(139),
		Pop(D),
		Eq(B, D),
		JmpRel(2),
		Jmp(20),

		// 152: stage five: five bytes
		PushI(8),
		Pop(A),
		PushI(0),
		Inp(B),
		Pop(C),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		Shl(C, A),
		Inp(B),
		Or(C, B),
		PushI(0b111111111111111111111111111111111111111),
		Pop(D),
		And(C, D),
		Add(D, C),
		PushI(0xf2656e6364),
		Pop(B),
		Eq(B, D),
		JmpRel(2),
		Jmp(20),

		// 179: stage six: three bytes
		PushI(0),
		Pop(C),
		Inp(B),
		Xor(C, B),
		Inp(B),
		Eq(C, B),
		JmpRel(2),
		Jmp(20),
		Inp(C),
		Eq(C, B),
		JmpRel(2),
		Jmp(20),

		// 191: stage seven: one byte
		PushI(0x2e),
		Inp(A),
		PushI(8),
		Pop(D),
		Shl(A, D),
		Add(A, C),
		PushI(0x7d2e),
		Pop(B),
		Eq(A, B),
		JmpRel(2),
		Jmp(20),

		// 202: win
		PushI('W'),
		Pop(A),
		Print(A),
		PushI('i'),
		Pop(A),
		Print(A),
		PushI('n'),
		Pop(A),
		Print(A),
		Halt(),
	}
}
