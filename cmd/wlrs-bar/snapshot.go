package main

import (
	"context"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/bar"
	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widgets"
)

// snapshotter opens the sensors once and reads them on every call.
type snapshotter struct {
	cfg    *config.Config
	src    sensor.Sources
	failed map[string]error
}

func newSnapshotter(ctx context.Context, c *config.Config, probes bar.Probes) *snapshotter {
	src, failed := bar.Sources(ctx, c, probes)
	for name, err := range failed {
		logger.Debug("sensor unavailable", "sensor", name, "error", err)
	}
	return &snapshotter{cfg: c, src: src, failed: failed}
}

// collect reads every open sensor. Sensors that failed to open are
// reported in Errors alongside read failures.
func (s *snapshotter) collect(ctx context.Context) sensor.Snapshot {
	snap := sensor.Collect(ctx, s.src)
	for name, err := range s.failed {
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[name] = err.Error()
	}
	if t := updatedLastTime(s.cfg); s.cfg.Widgets.UpdatedLast && !t.IsZero() {
		snap.UpdatedLast = widgets.UpdatedLastLabel(snap.Time.Sub(t))
	}
	return snap
}

// statusTimeout bounds a one-off status read.
const statusTimeout = 5 * time.Second
