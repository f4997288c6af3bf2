package sensor

import (
	"context"

	"github.com/pbnjay/memory"
	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryUsage is one memory sample in bytes.
type MemoryUsage struct {
	Total     uint64 `json:"total" yaml:"total"`
	Available uint64 `json:"available" yaml:"available"`
}

func (m MemoryUsage) Used() uint64 {
	if m.Available > m.Total {
		return 0
	}
	return m.Total - m.Available
}

// Percent is the used share of total memory.
func (m MemoryUsage) Percent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Used()) / float64(m.Total) * 100
}

// MemorySampler reports memory usage.
type MemorySampler interface {
	Sample(ctx context.Context) (MemoryUsage, error)
}

// SystemMemory reads available memory through gopsutil and falls back to
// the kernel's free memory count when that fails.
type SystemMemory struct{}

func NewSystemMemory() (*SystemMemory, error) {
	if memory.TotalMemory() == 0 {
		return nil, newError("ram", "total memory unknown", nil)
	}
	return &SystemMemory{}, nil
}

func (*SystemMemory) Sample(ctx context.Context) (MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		return MemoryUsage{Total: vm.Total, Available: vm.Available}, nil
	}

	total := memory.TotalMemory()
	if total == 0 {
		return MemoryUsage{}, newError("ram", "failed to sample usage", err)
	}
	return MemoryUsage{Total: total, Available: memory.FreeMemory()}, nil
}
