package prometheus

import (
	"fmt"
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure ProcessProbe implements the interface.
var _ driven.MemoryProbe = (*ProcessProbe)(nil)

// ProcessProbe reads the resident memory of a process.
type ProcessProbe struct {
	pid  int32
	once sync.Once
	proc *process.Process
	err  error
}

// NewProcessProbe creates a probe for the current process.
func NewProcessProbe() *ProcessProbe {
	return NewProcessProbeFor(int32(os.Getpid())) //nolint:gosec // PIDs fit in int32
}

// NewProcessProbeFor creates a probe for the given pid.
func NewProcessProbeFor(pid int32) *ProcessProbe {
	return &ProcessProbe{pid: pid}
}

// ResidentBytes returns the resident set size in bytes.
func (p *ProcessProbe) ResidentBytes() (uint64, error) {
	p.once.Do(func() {
		p.proc, p.err = process.NewProcess(p.pid)
	})
	if p.err != nil {
		return 0, fmt.Errorf("open process %d: %w", p.pid, p.err)
	}

	info, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("read memory of process %d: %w", p.pid, err)
	}
	return info.RSS, nil
}
