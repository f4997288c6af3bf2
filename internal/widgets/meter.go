package widgets

import (
	"context"
	"image"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

// redrawState tracks whether a meter should be visible, whether it is
// drawn right now, and whether its bar moved since the last draw.
type redrawState uint8

const (
	shouldBeShown redrawState = 1 << iota
	currentlyShown
	progressiveRedraw
)

func (s redrawState) has(f redrawState) bool { return s&f != 0 }

// MeterOptions configures a usage meter.
type MeterOptions struct {
	Style

	Icon draw.IconKind
	// IconAlign places the icon horizontally inside the bar.
	IconAlign draw.Align

	// Threshold is the usage, in percent, at which the meter appears.
	Threshold float64
	Interval  time.Duration

	// Sample returns usage in percent.
	Sample func(ctx context.Context) (float64, error)

	Now func() time.Time
}

// Meter shows an icon over a bar filling upwards with usage. It stays
// hidden while usage is below the threshold.
type Meter struct {
	widget.NoInput

	log  logging.Scope
	opts MeterOptions

	icon     *draw.Icon
	progress *draw.Progress

	state      redrawState
	usage      float64
	lastSample time.Time
	lastErr    string

	area image.Rectangle
}

type CPUOptions struct {
	Style
	Sampler   sensor.CPUSampler
	Threshold float64
	Interval  time.Duration
	Now       func() time.Time
}

// NewCPU builds a meter over CPU usage.
func NewCPU(log logging.Scope, opts CPUOptions) *Meter {
	return NewMeter(log, MeterOptions{
		Style:     opts.Style,
		Icon:      draw.IconChip,
		IconAlign: draw.CenterAt(0.575),
		Threshold: opts.Threshold,
		Interval:  opts.Interval,
		Sample:    opts.Sampler.Sample,
		Now:       opts.Now,
	})
}

type RAMOptions struct {
	Style
	Sampler   sensor.MemorySampler
	Threshold float64
	Interval  time.Duration
	Now       func() time.Time
}

// NewRAM builds a meter over memory usage.
func NewRAM(log logging.Scope, opts RAMOptions) *Meter {
	return NewMeter(log, MeterOptions{
		Style:     opts.Style,
		Icon:      draw.IconMemory,
		Threshold: opts.Threshold,
		Interval:  opts.Interval,
		Sample: func(ctx context.Context) (float64, error) {
			m, err := opts.Sampler.Sample(ctx)
			if err != nil {
				return 0, err
			}
			return m.Percent(), nil
		},
		Now: opts.Now,
	})
}

func NewMeter(log logging.Scope, opts MeterOptions) *Meter {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log.Info("initializing", "height", opts.DesiredHeight, "threshold", opts.Threshold, "interval", opts.Interval)

	return &Meter{
		log:  log,
		opts: opts,
		icon: draw.NewIcon(log.Child("icon"), draw.IconOptions{
			Kind:    opts.Icon,
			FG:      opts.Palette.Rose,
			BG:      draw.Clear,
			Margins: draw.RatioMargins{Top: 0.15, Bottom: 0.15, Left: 0.1, Right: 0.1},
			HAlign:  opts.IconAlign,
			Outline: opts.Outline,
		}),
		progress: draw.NewProgress(log.Child("progress"), draw.ProgressOptions{
			Start:     0,
			End:       100,
			Direction: draw.North,
			Filled:    opts.Palette.HighlightMed,
			Unfilled:  draw.Clear,
			BG:        opts.BG(),
			Outline:   opts.Outline,
		}),
	}
}

// Usage is the last sampled usage in percent.
func (m *Meter) Usage() float64 { return m.usage }

// Shown reports whether the meter is currently drawn.
func (m *Meter) Shown() bool { return m.state.has(currentlyShown) }

func (m *Meter) Name() string           { return m.log.Name() }
func (m *Meter) Area() image.Rectangle  { return m.area }
func (m *Meter) HAlign() draw.Align     { return m.opts.HAlign }
func (m *Meter) VAlign() draw.Align     { return m.opts.VAlign }
func (m *Meter) DesiredHeight() int     { return m.opts.DesiredHeight }
func (m *Meter) DesiredWidth(h int) int { return h }

func (m *Meter) Resize(area image.Rectangle) {
	m.area = area
	m.icon.Resize(area)
	m.progress.Resize(area)
}

func (m *Meter) ShouldRedraw() bool {
	now := m.opts.Now()
	if !m.lastSample.IsZero() && now.Sub(m.lastSample) < m.opts.Interval {
		return false
	}
	m.lastSample = now

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	usage, err := m.opts.Sample(ctx)
	if err != nil {
		if msg := err.Error(); msg != m.lastErr {
			m.log.Warn("failed to sample usage", "error", err)
			m.lastErr = msg
		}
		return false
	}
	m.lastErr = ""
	m.usage = min(max(usage, 0), 100)

	if m.usage < m.opts.Threshold {
		m.log.Debug("should not be shown", "usage", m.usage)
		m.state &= currentlyShown
		return m.state.has(currentlyShown)
	}

	m.log.Debug("should be shown", "usage", m.usage)
	m.state |= shouldBeShown
	m.progress.SetProgress(m.usage)
	if m.progress.ShouldRedraw() {
		m.state |= progressiveRedraw
	}
	return m.state.has(progressiveRedraw) || !m.state.has(currentlyShown)
}

func (m *Meter) Draw(ctx *draw.Context) error {
	if ctx.FullRedraw {
		m.log.Trace("full redraw")
		ctx.Fill(m.area, m.opts.BG())
		ctx.AddDamage(m.area)
	}

	switch {
	case m.state.has(shouldBeShown) &&
		(ctx.FullRedraw || m.state.has(progressiveRedraw) || !m.state.has(currentlyShown)):
		m.log.Trace("showing")
		m.state = shouldBeShown | currentlyShown
		if err := m.progress.Draw(ctx); err != nil {
			return err
		}
		if err := m.icon.Draw(ctx); err != nil {
			return err
		}
	case m.state.has(currentlyShown):
		m.log.Trace("hiding")
		m.state = 0
		ctx.Fill(m.area, m.opts.BG())
		ctx.AddDamage(m.area)
	}
	return nil
}
