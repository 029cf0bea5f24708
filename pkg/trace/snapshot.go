package trace

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"

	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
)

// Snapshot is a post-mortem copy of a machine: enough to inspect where and
// why it stopped.
type Snapshot struct {
	Status  string
	Fault   string        // empty unless Status is "faulted"
	Kind    cpu.FaultKind // 0 unless Status is "faulted"
	Steps   uint64
	State   cpu.State
	Program []inst.Instruction
}

func init() {
	gob.Register(inst.Instruction{})
}

// Capture takes a snapshot of m.
func Capture(m *cpu.Machine) *Snapshot {
	snap := &Snapshot{
		Status:  m.Status().String(),
		Steps:   m.Steps(),
		State:   m.State(),
		Program: m.Program(),
	}
	if f := m.Fault(); f != nil {
		snap.Fault = f.Error()
		snap.Kind = f.Kind
	}
	return snap
}

// SaveSnapshot writes snap to path.
func SaveSnapshot(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return errors.Wrapf(err, "trace: encode snapshot %s", path)
	}
	return f.Close()
}

// LoadSnapshot loads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, errors.Wrapf(err, "trace: decode snapshot %s", path)
	}
	return &snap, nil
}
