package sensor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatterySnapshot is a classified battery reading.
type BatterySnapshot struct {
	Source string  `json:"source" yaml:"source"`
	Charge float64 `json:"charge" yaml:"charge"`
	Status string  `json:"status" yaml:"status"`
	Class  string  `json:"class" yaml:"class"`
}

// WorkspaceSnapshot lists workspaces and the focused one.
type WorkspaceSnapshot struct {
	IDs    []int `json:"ids" yaml:"ids"`
	Active int   `json:"active" yaml:"active"`
}

// Snapshot is every sensor read once. Nil fields had no source.
type Snapshot struct {
	Instance    string             `json:"instance,omitempty" yaml:"instance,omitempty"`
	Time        time.Time          `json:"time" yaml:"time"`
	Battery     *BatterySnapshot   `json:"battery,omitempty" yaml:"battery,omitempty"`
	CPU         *float64           `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory      *MemoryUsage       `json:"memory,omitempty" yaml:"memory,omitempty"`
	RAM         *float64           `json:"ram,omitempty" yaml:"ram,omitempty"` // Percent used
	Volume      *VolumeState       `json:"volume,omitempty" yaml:"volume,omitempty"`
	Workspaces  *WorkspaceSnapshot `json:"workspaces,omitempty" yaml:"workspaces,omitempty"`
	UpdatedLast string             `json:"updated_last,omitempty" yaml:"updated_last,omitempty"`
	Errors      map[string]string  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// WorkspaceQuerier is the read side of Hyprland.
type WorkspaceQuerier interface {
	Workspaces(ctx context.Context) ([]int, error)
	ActiveWorkspace(ctx context.Context) (int, error)
}

// Sources is the set of sensors Collect reads. Nil entries are skipped.
type Sources struct {
	Battery    BatterySource
	Thresholds BatteryThresholds
	CPU        CPUSampler
	Memory     MemorySampler
	Volume     VolumeBackend
	Workspaces WorkspaceQuerier
	Now        func() time.Time
}

// Collect reads every source concurrently. Failures are recorded in Errors
// by sensor name and do not stop the others.
func Collect(ctx context.Context, src Sources) Snapshot {
	now := time.Now
	if src.Now != nil {
		now = src.Now
	}
	snap := Snapshot{Time: now()}

	var mu sync.Mutex
	fail := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[name] = err.Error()
	}

	// Each reader owns its own Snapshot field.
	var g errgroup.Group

	if src.Battery != nil {
		g.Go(func() error {
			r, err := src.Battery.Read(ctx)
			if err != nil {
				fail("battery", err)
				return nil
			}
			class, _ := src.Thresholds.Classify(r)
			snap.Battery = &BatterySnapshot{
				Source: src.Battery.Name(),
				Charge: r.Charge,
				Status: r.Status,
				Class:  class.String(),
			}
			return nil
		})
	}

	if src.CPU != nil {
		g.Go(func() error {
			pct, err := src.CPU.Sample(ctx)
			if err != nil {
				fail("cpu", err)
				return nil
			}
			snap.CPU = &pct
			return nil
		})
	}

	if src.Memory != nil {
		g.Go(func() error {
			m, err := src.Memory.Sample(ctx)
			if err != nil {
				fail("ram", err)
				return nil
			}
			pct := m.Percent()
			snap.Memory = &m
			snap.RAM = &pct
			return nil
		})
	}

	if src.Volume != nil {
		g.Go(func() error {
			v, err := src.Volume.Get(ctx)
			if err != nil {
				fail("volume", err)
				return nil
			}
			snap.Volume = &v
			return nil
		})
	}

	if src.Workspaces != nil {
		g.Go(func() error {
			ids, err := src.Workspaces.Workspaces(ctx)
			if err != nil {
				fail("workspaces", err)
				return nil
			}
			active, err := src.Workspaces.ActiveWorkspace(ctx)
			if err != nil {
				fail("workspaces", err)
			}
			snap.Workspaces = &WorkspaceSnapshot{IDs: ids, Active: active}
			return nil
		})
	}

	_ = g.Wait()
	return snap
}
