package main

import (
	"errors"
	"testing"

	"github.com/oisee/regvm/pkg/byteio"
	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

func runBuiltin(t *testing.T, name, input string) (string, *cpu.Machine, error) {
	t.Helper()
	prog, err := lookupProgram(name)
	if err != nil {
		t.Fatal(err)
	}
	script := byteio.ScriptString(input)
	m, err := cpu.New(prog, script)
	if err != nil {
		t.Fatalf("New(%s): %v", name, err)
	}
	err = m.Run()
	return script.String(), m, err
}

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range programNames() {
		if err := inst.Validate(builtins[name].Build()); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := lookupProgram("nosuch"); err == nil {
		t.Error("lookupProgram(nosuch) succeeded")
	}
}

func TestBuiltinOutput(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"hello", "", "Hello, world!\n"},
		{"echo", "abc\ndef", "abc\n"},
		{"echo", "a\r\nb", "a\n"},
		{"countdown", "", "9876543210\n"},
		{"crackme", "nope", "Lose"},
		{"crackme", "flag{x", "Lose"},
		{"crackme", "flag{whats_the_difference..!}", "Lose"},
		{"crackme", "flag{whats_the_difference...}", "Win"},
		{"crackme", "flag{whats_the_difference...}\r\n", "Win"},
	}
	for _, tt := range tests {
		got, m, err := runBuiltin(t, tt.name, tt.input)
		if err != nil {
			t.Errorf("%s(%q): %v", tt.name, tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s(%q) printed %q, want %q", tt.name, tt.input, got, tt.want)
		}
		if m.Status() != cpu.Halted {
			t.Errorf("%s(%q): status %s, want halted", tt.name, tt.input, m.Status())
		}
	}
}

func TestCrackmeInputExhausted(t *testing.T) {
	tests := []struct {
		input string
		ip    uint64
	}{
		{"", 2},
		{"flag", 44},
		{"flag{w", 59},
		{"flag{whats_the_difference", 181},
		{"flag{whats_the_difference...", 192},
	}
	for _, tt := range tests {
		out, m, err := runBuiltin(t, "crackme", tt.input)
		if !errors.Is(err, cpu.ErrInputExhausted) {
			t.Errorf("crackme(%q): err = %v, want input exhausted", tt.input, err)
			continue
		}
		if f := m.Fault(); f.IP != tt.ip {
			t.Errorf("crackme(%q): fault at %d, want %d", tt.input, f.IP, tt.ip)
		}
		if out != "" {
			t.Errorf("crackme(%q) printed %q before faulting", tt.input, out)
		}
	}
}

func TestEchoWithoutNewline(t *testing.T) {
	out, m, err := runBuiltin(t, "echo", "xy")
	if cpu.KindOf(err) != cpu.InputExhausted {
		t.Fatalf("err = %v, want input exhausted", err)
	}
	if out != "xy" {
		t.Errorf("printed %q, want %q", out, "xy")
	}
	if m.Fault().IP != 0 {
		t.Errorf("fault at %d, want 0", m.Fault().IP)
	}
}
