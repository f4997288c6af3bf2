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

type BatteryOptions struct {
	Style
	Source     sensor.BatterySource
	Thresholds sensor.BatteryThresholds

	// Interval between reads. Defaults to five seconds.
	Interval time.Duration

	Now func() time.Time
}

// Battery draws a battery outline filled to the current charge, coloured
// by status, with a bolt while charging.
type Battery struct {
	widget.NoInput

	log  logging.Scope
	opts BatteryOptions

	outline  *draw.Icon
	bolt     *draw.Icon
	progress *draw.Progress

	reading  sensor.BatteryReading
	status   sensor.BatteryStatus
	lastRead time.Time
	lastErr  string

	area  image.Rectangle
	dirty bool
}

func NewBattery(log logging.Scope, opts BatteryOptions) *Battery {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log.Info("initializing", "source", opts.Source.Name(), "height", opts.DesiredHeight)

	b := &Battery{
		log:  log,
		opts: opts,
		outline: draw.NewIcon(log.Child("outline"), draw.IconOptions{
			Kind:    draw.IconBattery,
			BG:      opts.BG(),
			Margins: draw.RatioMargins{Top: 0.1, Bottom: 0.1, Left: 0.1, Right: 0.12},
			Outline: opts.Outline,
		}),
		bolt: draw.NewIcon(log.Child("bolt"), draw.IconOptions{
			Kind:    draw.IconBolt,
			FG:      opts.Palette.Text,
			BG:      draw.Clear,
			Margins: draw.RatioMargins{Top: 0.15, Bottom: 0.15},
			Outline: opts.Outline,
		}),
		progress: draw.NewProgress(log.Child("progress"), draw.ProgressOptions{
			Start:     0,
			End:       1,
			Direction: draw.East,
			Unfilled:  draw.Clear,
			BG:        draw.Clear,
			Margins:   draw.RatioMargins{Top: 0.3, Bottom: 0.3, Left: 0.1, Right: 0.2},
			Outline:   opts.Outline,
		}),
		dirty: true,
	}
	b.setStatus(sensor.BatteryNormal)
	return b
}

// StatusColor is the colour a status is drawn in.
func StatusColor(p draw.Palette, s sensor.BatteryStatus) draw.Color {
	switch s {
	case sensor.BatteryFull:
		return p.Foam
	case sensor.BatteryCharging, sensor.BatteryWarn:
		return p.Gold
	case sensor.BatteryCritical:
		return p.Love
	default:
		return p.Rose
	}
}

func (b *Battery) setStatus(s sensor.BatteryStatus) {
	if s != b.status {
		b.log.Debug("status changed", "from", b.status, "to", s)
		b.dirty = true
	}
	b.status = s
	c := StatusColor(b.opts.Palette, s)
	b.outline.SetFG(c)
	b.progress.SetFilledColor(c)
}

func (b *Battery) Reading() sensor.BatteryReading { return b.reading }
func (b *Battery) Status() sensor.BatteryStatus   { return b.status }

func (b *Battery) Name() string          { return b.log.Name() }
func (b *Battery) Area() image.Rectangle { return b.area }
func (b *Battery) HAlign() draw.Align    { return b.opts.HAlign }
func (b *Battery) VAlign() draw.Align    { return b.opts.VAlign }
func (b *Battery) DesiredHeight() int    { return b.opts.DesiredHeight }

func (b *Battery) DesiredWidth(height int) int {
	return b.outline.DesiredWidth(height)
}

func (b *Battery) Resize(area image.Rectangle) {
	b.area = area
	b.dirty = true
	b.outline.Resize(area)
	used := b.outline.AreaUsed()
	b.progress.Resize(used)
	b.bolt.Resize(used)
}

// update reads the source at most once per interval. A failed read keeps
// the previous state.
func (b *Battery) update() {
	now := b.opts.Now()
	if !b.lastRead.IsZero() && now.Sub(b.lastRead) < b.opts.Interval {
		return
	}
	b.lastRead = now

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := b.opts.Source.Read(ctx)
	if err != nil {
		if msg := err.Error(); msg != b.lastErr {
			b.log.Warn("failed to read battery", "error", err)
			b.lastErr = msg
		}
		return
	}
	b.lastErr = ""

	status, known := b.opts.Thresholds.Classify(r)
	if !known {
		b.log.Warn("unknown battery status", "status", r.Status)
	}
	b.log.Trace("read", "charge", r.Charge, "status", r.Status)
	b.reading = r
	b.setStatus(status)
	b.progress.SetProgress(r.Charge)
}

func (b *Battery) ShouldRedraw() bool {
	b.update()
	return b.dirty || b.outline.ShouldRedraw() || b.progress.ShouldRedraw()
}

func (b *Battery) Draw(ctx *draw.Context) error {
	ctx.Fill(b.area, b.opts.BG())
	if err := b.outline.Draw(ctx); err != nil {
		return err
	}
	if err := b.progress.Draw(ctx); err != nil {
		return err
	}
	if b.status == sensor.BatteryCharging {
		if err := b.bolt.Draw(ctx); err != nil {
			return err
		}
	}
	ctx.AddDamage(b.area)
	b.dirty = false
	return nil
}
