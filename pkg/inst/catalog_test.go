package inst

import (
	"strings"
	"testing"
)

// TestCatalogCompleteness verifies every opcode has catalog metadata.
func TestCatalogCompleteness(t *testing.T) {
	seen := make(map[string]OpCode)
	for _, op := range AllOps() {
		info := Catalog[op]
		if info.Mnemonic == "" {
			t.Errorf("opcode %d has no mnemonic", op)
			continue
		}
		if prev, ok := seen[info.Mnemonic]; ok {
			t.Errorf("mnemonic %q used by both %d and %d", info.Mnemonic, prev, op)
		}
		seen[info.Mnemonic] = op
	}
	if len(AllOps()) != int(OpCodeCount) {
		t.Errorf("AllOps: got %d, want %d", len(AllOps()), OpCodeCount)
	}
}

func TestOpClasses(t *testing.T) {
	for _, op := range AllOps() {
		n := 0
		if IsALU(op) {
			n++
		}
		if IsCompare(op) {
			n++
		}
		if IsJump(op) {
			n++
		}
		if n > 1 {
			t.Errorf("%s belongs to %d op classes", op, n)
		}
	}
	if !IsALU(SHR) || IsALU(INP) {
		t.Error("ALU range is wrong")
	}
	if !IsCompare(LT) || IsCompare(JMP) {
		t.Error("compare range is wrong")
	}
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  string
	}{
		{PushI(5), "PUSHI 5"},
		{PushI(0x2e), "PUSHI 0x2e"},
		{PushR(C), "PUSHR C"},
		{Pop(SP), "POP SP"},
		{Sub(A, B), "SUB A, B"},
		{Mul(B, IP), "MUL B, IP"},
		{Inp(D), "INP D"},
		{Print(A), "PRINT A"},
		{Eq(A, C), "EQ A, C"},
		{Jmp(33), "JMP 33"},
		{JmpRel(2), "JMPREL +2"},
		{JmpRel(-3), "JMPREL -3"},
		{Call(7), "CALL 7"},
		{Ret(), "RET"},
		{Halt(), "HALT"},
		{Instruction{Op: 200}, "OP(200)"},
	}
	for _, tc := range tests {
		got := Disassemble(tc.instr)
		if got != tc.want {
			t.Errorf("Disassemble(%+v) = %q, want %q", tc.instr, got, tc.want)
		}
	}
}

func TestDisassembleProgram(t *testing.T) {
	prog := make([]Instruction, 0, 11)
	for i := 0; i < 10; i++ {
		prog = append(prog, PushI(uint64(i)))
	}
	prog = append(prog, Halt())

	lines := strings.Split(strings.TrimSuffix(DisassembleProgram(prog), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want 11", len(lines))
	}
	if lines[0] != " 0: PUSHI 0" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[10] != "10: HALT" {
		t.Errorf("last line = %q", lines[10])
	}
}

func TestJmpRelOffset(t *testing.T) {
	for _, off := range []int64{0, 1, 2, -1, -100} {
		if got := JmpRel(off).Offset(); got != off {
			t.Errorf("JmpRel(%d).Offset() = %d", off, got)
		}
	}
}

func TestValidate(t *testing.T) {
	good := []Instruction{PushI(1), Pop(IP), Add(SP, D), Jmp(1000), Halt()}
	if err := Validate(good); err != nil {
		t.Errorf("valid program rejected: %v", err)
	}

	tests := []struct {
		name string
		prog []Instruction
		want string
	}{
		{"unknown opcode", []Instruction{Halt(), {Op: OpCodeCount}}, "instruction 1: unknown opcode"},
		{"bad left register", []Instruction{{Op: POP, L: 9}}, "invalid register 9"},
		{"bad right register", []Instruction{{Op: XOR, L: A, R: RegisterCount}}, "invalid right register 6"},
		{"bad compare register", []Instruction{{Op: GT, L: 7, R: B}}, "GT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.prog)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestRegisterNames(t *testing.T) {
	want := []string{"A", "B", "C", "D", "IP", "SP"}
	for r := Register(0); r < RegisterCount; r++ {
		if r.String() != want[r] {
			t.Errorf("register %d: got %q, want %q", r, r.String(), want[r])
		}
	}
	if Register(6).Valid() {
		t.Error("register 6 should be invalid")
	}
}
