package cpu_test

import (
	"fmt"

	"github.com/oisee/regvm/pkg/byteio"
	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

// Reads two digits and prints the larger one.
func ExampleMachine_Run() {
	prog := []inst.Instruction{
		inst.Inp(inst.A),
		inst.Inp(inst.B),
		inst.Gt(inst.A, inst.B),
		inst.Jmp(6), // A > B
		inst.PushR(inst.B),
		inst.Jmp(7),
		inst.PushR(inst.A), // 6
		inst.Pop(inst.C),   // 7
		inst.Print(inst.C),
		inst.Halt(),
	}

	ch := byteio.ScriptString("3\r7")
	m, err := cpu.New(prog, ch)
	if err != nil {
		panic(err)
	}
	if err := m.Run(); err != nil {
		panic(err)
	}
	fmt.Println(ch.String(), m.Status())
	// Output: 7 halted
}
