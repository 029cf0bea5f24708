package trace

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

// Registers is the register file as of one event.
type Registers struct {
	A  uint64 `json:"a"`
	B  uint64 `json:"b"`
	C  uint64 `json:"c"`
	D  uint64 `json:"d"`
	IP uint64 `json:"ip"`
	SP uint64 `json:"sp"`
}

// Event records one executed instruction and the registers after it.
type Event struct {
	Step  uint64    `json:"step"`
	Addr  uint64    `json:"addr"`
	Instr string    `json:"instr"`
	Regs  Registers `json:"regs"`
	Top   *uint64   `json:"top,omitempty"` // top of stack, if any
}

// Recorder collects events from a machine. It implements cpu.Tracer.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewRecorder creates a recorder keeping the most recent limit events, or
// all of them if limit <= 0.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Trace appends one event.
func (r *Recorder) Trace(step, addr uint64, instr inst.Instruction, s *cpu.State) {
	ev := Event{
		Step:  step,
		Addr:  addr,
		Instr: inst.Disassemble(instr),
		Regs:  Registers{A: s.A, B: s.B, C: s.C, D: s.D, IP: s.IP, SP: s.SP},
	}
	if live := s.Live(); len(live) > 0 {
		top := live[len(live)-1]
		ev.Top = &top
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.events) == r.limit {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Event, len(r.events))
	copy(result, r.events)
	return result
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// WriteJSON writes events as an indented JSON array.
func WriteJSON(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(events), "trace: encode")
}

// ReadJSON reads events written by WriteJSON.
func ReadJSON(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, errors.Wrap(err, "trace: decode")
	}
	return events, nil
}
