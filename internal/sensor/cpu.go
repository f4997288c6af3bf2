package sensor

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUSampler reports total CPU usage in percent.
type CPUSampler interface {
	Sample(ctx context.Context) (float64, error)
}

// OneShotCPUWindow is how long a standalone sample measures. A sample with
// no previous one to diff against would otherwise cover almost no time.
const OneShotCPUWindow = 200 * time.Millisecond

// SystemCPU samples /proc/stat through gopsutil. With a zero Interval each
// sample covers the time since the previous one; otherwise Sample blocks
// for Interval and measures across it.
type SystemCPU struct {
	Interval time.Duration
}

// NewSystemCPU primes the sampler so the first Sample is not an average
// since boot.
func NewSystemCPU(ctx context.Context) (*SystemCPU, error) {
	if _, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		return nil, newError("cpu", "cpu usage unsupported", err)
	}
	return &SystemCPU{}, nil
}

func (c *SystemCPU) Sample(ctx context.Context) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, c.Interval, false)
	if err != nil {
		return 0, newError("cpu", "failed to sample usage", err)
	}
	if len(pct) == 0 {
		return 0, newError("cpu", "no cpu usage reported", nil)
	}
	return clamp(pct[0], 0, 100), nil
}
