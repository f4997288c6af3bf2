package bar

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
	"github.com/elijahimmer/wlrs-bar/internal/widgets"
)

// Probes open the system sensors. Tests replace them with fakes.
type Probes struct {
	Battery    func(kind, path string) (sensor.BatterySource, error)
	CPU        func(ctx context.Context) (sensor.CPUSampler, error)
	Memory     func() (sensor.MemorySampler, error)
	Volume     func(backend string) (sensor.VolumeBackend, error)
	Workspaces func(dir string) (widgets.WorkspaceClient, error)
}

// SystemProbes opens the real sensors.
func SystemProbes() Probes {
	return Probes{
		Battery: sensor.NewBatterySource,
		CPU: func(ctx context.Context) (sensor.CPUSampler, error) {
			return sensor.NewSystemCPU(ctx)
		},
		Memory: func() (sensor.MemorySampler, error) {
			return sensor.NewSystemMemory()
		},
		Volume: func(backend string) (sensor.VolumeBackend, error) {
			return sensor.NewVolumeBackend(backend, nil)
		},
		Workspaces: func(dir string) (widgets.WorkspaceClient, error) {
			if dir == "" {
				d, err := sensor.HyprlandDir(os.Getenv)
				if err != nil {
					return nil, err
				}
				dir = d
			}
			return sensor.NewHyprland(config.ExpandPath(dir))
		},
	}
}

// BuildOptions carries what the config file does not.
type BuildOptions struct {
	Palette draw.Palette

	// UpdatedLast is the last system update. Zero hides the widget.
	UpdatedLast time.Time

	// Feedback plays after a volume change. Optional.
	Feedback func() error

	// OnBatteryCritical runs once each time the battery becomes critical.
	OnBatteryCritical func(charge float64)

	Probes Probes
}

// Build assembles a bar from configuration. A widget whose sensor cannot
// be opened is left out with a warning.
func Build(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts BuildOptions) *Bar {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Probes.Battery == nil {
		opts.Probes = SystemProbes()
	}
	dbg := cfg.Debug
	height := cfg.Bar.Height

	scope := func(name string) logging.Scope {
		return logging.NewScope(logger, name, dbg.LogsFor(name))
	}
	style := func(name string) widgets.Style {
		return widgets.Style{
			Palette:       opts.Palette,
			DesiredHeight: height,
			Outline:       dbg.OutlinesFor(name),
		}
	}
	disabled := func(name string, err error) {
		logger.Warn("widget disabled", "widget", name, "error", err)
	}

	var left, center, right []widget.Widget
	var battery *widgets.Battery

	if cfg.Widgets.Workspaces {
		client, err := opts.Probes.Workspaces(cfg.Workspaces.SocketDir)
		if err != nil {
			disabled("workspaces", err)
		} else {
			left = append(left, widgets.NewWorkspaces(scope("workspaces"), widgets.WorkspacesOptions{
				Style:      style("workspaces"),
				Client:     client,
				Max:        cfg.Workspaces.Max,
				WorkerLogs: dbg.LogsFor("workspaces"),
			}))
		}
	}

	if cfg.Widgets.Clock {
		center = append(center, widgets.NewClock(scope("clock"), widgets.ClockOptions{
			Style:       style("clock"),
			ShowSeconds: cfg.Clock.ShowSeconds,
		}))
	}

	// The first right widget is the rightmost.
	if cfg.Widgets.UpdatedLast && !opts.UpdatedLast.IsZero() {
		right = append(right, widgets.NewUpdatedLast(scope("updated-last"), widgets.UpdatedLastOptions{
			Style: style("updated-last"),
			Time:  opts.UpdatedLast,
		}))
	}

	if cfg.Widgets.Battery {
		src, err := opts.Probes.Battery(cfg.Battery.Source, config.ExpandPath(cfg.Battery.Path))
		if err != nil {
			disabled("battery", err)
		} else {
			battery = widgets.NewBattery(scope("battery"), widgets.BatteryOptions{
				Style:  style("battery"),
				Source: src,
				Thresholds: sensor.BatteryThresholds{
					Warn:     cfg.Battery.Warn,
					Critical: cfg.Battery.Critical,
					Full:     cfg.Battery.Full,
				},
				Interval: cfg.Battery.Interval.Duration(),
			})
			right = append(right, battery)
		}
	}

	if cfg.Widgets.Volume {
		backend, err := opts.Probes.Volume(cfg.Volume.Backend)
		if err != nil {
			disabled("volume", err)
		} else {
			right = append(right, widgets.NewVolume(scope("volume"), widgets.VolumeOptions{
				Style:      style("volume"),
				Backend:    backend,
				Interval:   cfg.Volume.Interval.Duration(),
				Step:       cfg.Volume.Step,
				Feedback:   opts.Feedback,
				WorkerLogs: dbg.LogsFor("volume-worker"),
			}))
		}
	}

	if cfg.Widgets.RAM {
		sampler, err := opts.Probes.Memory()
		if err != nil {
			disabled("ram", err)
		} else {
			right = append(right, widgets.NewRAM(scope("ram"), widgets.RAMOptions{
				Style:     style("ram"),
				Sampler:   sampler,
				Threshold: cfg.RAM.ShowThreshold,
				Interval:  cfg.RAM.Interval.Duration(),
			}))
		}
	}

	if cfg.Widgets.CPU {
		sampler, err := opts.Probes.CPU(ctx)
		if err != nil {
			disabled("cpu", err)
		} else {
			right = append(right, widgets.NewCPU(scope("cpu"), widgets.CPUOptions{
				Style:     style("cpu"),
				Sampler:   sampler,
				Threshold: cfg.CPU.ShowThreshold,
				Interval:  cfg.CPU.Interval.Duration(),
			}))
		}
	}

	b := New(scope("bar"), Options{
		Palette:       opts.Palette,
		Height:        height,
		FallbackWidth: cfg.Bar.FallbackWidth,
		Damage:        dbg.Damage,
		HeightTest:    dbg.HeightTest,
		Left:          left,
		Center:        center,
		Right:         right,
	})

	if battery != nil && opts.OnBatteryCritical != nil {
		b.OnFrame(criticalWatch(battery, opts.OnBatteryCritical))
	}
	return b
}

// criticalWatch calls fn when the battery enters the critical status.
func criticalWatch(b *widgets.Battery, fn func(charge float64)) func() {
	was := false
	return func() {
		is := b.Status() == sensor.BatteryCritical
		if is && !was {
			fn(b.Reading().Charge)
		}
		was = is
	}
}

// Sources opens the sensors for a one-off snapshot without a display.
// Sensors that cannot be opened are reported by name and left nil.
func Sources(ctx context.Context, cfg *config.Config, probes Probes) (sensor.Sources, map[string]error) {
	if probes.Battery == nil {
		probes = SystemProbes()
	}
	src := sensor.Sources{
		Thresholds: sensor.BatteryThresholds{
			Warn:     cfg.Battery.Warn,
			Critical: cfg.Battery.Critical,
			Full:     cfg.Battery.Full,
		},
	}
	failed := make(map[string]error)

	if cfg.Widgets.Battery {
		if s, err := probes.Battery(cfg.Battery.Source, config.ExpandPath(cfg.Battery.Path)); err != nil {
			failed["battery"] = err
		} else {
			src.Battery = s
		}
	}
	if cfg.Widgets.CPU {
		if s, err := probes.CPU(ctx); err != nil {
			failed["cpu"] = err
		} else {
			if sys, ok := s.(*sensor.SystemCPU); ok && sys.Interval == 0 {
				sys.Interval = sensor.OneShotCPUWindow
			}
			src.CPU = s
		}
	}
	if cfg.Widgets.RAM {
		if s, err := probes.Memory(); err != nil {
			failed["ram"] = err
		} else {
			src.Memory = s
		}
	}
	if cfg.Widgets.Volume {
		if s, err := probes.Volume(cfg.Volume.Backend); err != nil {
			failed["volume"] = err
		} else {
			src.Volume = s
		}
	}
	if cfg.Widgets.Workspaces {
		if s, err := probes.Workspaces(cfg.Workspaces.SocketDir); err != nil {
			failed["workspaces"] = err
		} else {
			src.Workspaces = s
		}
	}
	return src, failed
}
