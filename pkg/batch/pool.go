// Package batch runs one program against many inputs in parallel, each on
// its own machine.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/oisee/regvm/pkg/byteio"
	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

func logger() commonlog.Logger { return commonlog.GetLogger("regvm.batch") }

// Outcome is the result of running the program on one input.
type Outcome struct {
	Index  int
	Input  []byte
	Output []byte
	Steps  uint64
	Err    error // nil on a clean halt, otherwise a *cpu.Fault
}

// Halted reports whether the run ended on a Halt.
func (o Outcome) Halted() bool { return o.Err == nil }

// Pool runs machines on a fixed number of workers.
type Pool struct {
	NumWorkers int
	// Options are applied to every machine. Options carrying per-machine
	// state (WithTracer) must not be shared this way.
	Options []cpu.Option

	halted  atomic.Int64
	faulted atomic.Int64
}

// NewPool creates a pool with the given number of workers.
func NewPool(numWorkers int, opts ...cpu.Option) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers, Options: opts}
}

// Stats returns how many runs halted and faulted so far, across all calls
// to Run.
func (p *Pool) Stats() (halted, faulted int64) {
	return p.halted.Load(), p.faulted.Load()
}

// Run executes program once per input and returns the outcomes in input
// order. It fails only if the program or options are rejected.
func (p *Pool) Run(program []inst.Instruction, inputs [][]byte) ([]Outcome, error) {
	if err := inst.Validate(program); err != nil {
		return nil, errors.Wrap(err, "batch: invalid program")
	}
	// Surface option errors once instead of per input.
	if _, err := cpu.New(program, nil, p.Options...); err != nil {
		return nil, errors.Wrap(err, "batch")
	}

	outcomes := make([]Outcome, len(inputs))
	ch := make(chan int, len(inputs))
	for i := range inputs {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	for w := 0; w < p.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				outcomes[i] = p.runOne(program, i, inputs[i])
			}
		}()
	}
	wg.Wait()

	halted, faulted := p.Stats()
	logger().Infof("%d inputs on %d workers: %d halted, %d faulted in total", len(inputs), p.NumWorkers, halted, faulted)
	return outcomes, nil
}

func (p *Pool) runOne(program []inst.Instruction, index int, input []byte) Outcome {
	out := Outcome{Index: index, Input: input}
	script := byteio.NewScript(input)
	m, err := cpu.New(program, script, p.Options...)
	if err != nil {
		out.Err = err
		p.faulted.Add(1)
		return out
	}
	out.Err = m.Run()
	out.Steps = m.Steps()
	out.Output = append([]byte(nil), script.Output()...)
	if out.Err != nil {
		p.faulted.Add(1)
		logger().Debugf("input %d: %s", index, out.Err)
	} else {
		p.halted.Add(1)
	}
	return out
}

// Halting returns the outcomes that ended on a Halt.
func Halting(outcomes []Outcome) []Outcome {
	var res []Outcome
	for _, o := range outcomes {
		if o.Halted() {
			res = append(res, o)
		}
	}
	return res
}
