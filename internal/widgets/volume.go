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

type VolumeOptions struct {
	Style
	Backend sensor.VolumeBackend

	// Interval between polls. Defaults to 250ms.
	Interval time.Duration
	// Step is the change per scroll notch, in percent. Defaults to 5.
	Step float64

	// Feedback is called after a change the user asked for has been
	// observed. Optional.
	Feedback func() error

	WorkerLogs bool
}

// ManagerMsg is a command for the volume worker.
type ManagerMsg struct {
	Kind  ManagerMsgKind
	Delta float64
}

type ManagerMsgKind uint8

const (
	MsgSetVolume ManagerMsgKind = iota
	MsgToggleMute
	MsgClose
)

// Volume shows the default sink's volume as a speaker over a bar. A
// worker goroutine owns the backend so slow commands never block drawing.
type Volume struct {
	log  logging.Scope
	opts VolumeOptions

	icon     *draw.Icon
	progress *draw.Progress

	state           sensor.VolumeState
	known           bool
	pendingFeedback bool

	area  image.Rectangle
	dirty bool

	states chan sensor.VolumeState
	cmds   chan ManagerMsg
	done   chan struct{}
}

func NewVolume(log logging.Scope, opts VolumeOptions) *Volume {
	if opts.Interval <= 0 {
		opts.Interval = 250 * time.Millisecond
	}
	if opts.Step <= 0 {
		opts.Step = 5
	}
	log.Info("initializing", "backend", opts.Backend.Name(), "height", opts.DesiredHeight)

	v := &Volume{
		log:  log,
		opts: opts,
		icon: draw.NewIcon(log.Child("icon"), draw.IconOptions{
			Kind:    draw.IconSpeaker,
			FG:      opts.Palette.Rose,
			BG:      draw.Clear,
			Margins: draw.RatioMargins{Top: 0.2, Bottom: 0.2, Left: 0.1, Right: 0.1},
			HAlign:  draw.CenterAt(0.55),
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
		dirty:  true,
		states: make(chan sensor.VolumeState, 8),
		cmds:   make(chan ManagerMsg, 8),
		done:   make(chan struct{}),
	}
	go v.work(log.Child("worker").WithLog(opts.WorkerLogs))
	return v
}

func (v *Volume) work(log logging.Scope) {
	defer close(v.done)
	log.Debug("worker starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(v.opts.Interval)
	defer ticker.Stop()

	var last sensor.VolumeState
	have := false
	lastErr := ""

	poll := func() {
		st, err := v.opts.Backend.Get(ctx)
		if err != nil {
			if msg := err.Error(); msg != lastErr {
				log.Warn("failed to get volume", "error", err)
				lastErr = msg
			}
			return
		}
		lastErr = ""
		if have && st == last {
			return
		}
		log.Trace("volume changed", "percent", st.Percent, "muted", st.Muted)
		last, have = st, true
		select {
		case v.states <- st:
		default:
			// The newest state matters; drop the oldest queued one.
			select {
			case <-v.states:
			default:
			}
			v.states <- st
		}
	}

	poll()
	for {
		select {
		case <-ticker.C:
			poll()
		case msg := <-v.cmds:
			var err error
			switch msg.Kind {
			case MsgClose:
				log.Debug("worker told to close")
				return
			case MsgSetVolume:
				err = v.opts.Backend.Adjust(ctx, msg.Delta)
			case MsgToggleMute:
				err = v.opts.Backend.ToggleMute(ctx)
			}
			if err != nil {
				log.Warn("volume command failed", "error", err)
			}
			poll()
		}
	}
}

func (v *Volume) send(msg ManagerMsg) {
	select {
	case v.cmds <- msg:
	default:
		v.log.Warn("volume worker is busy, dropping command", "kind", msg.Kind)
	}
}

// SetVolume changes the volume by delta percent.
func (v *Volume) SetVolume(delta float64) {
	v.pendingFeedback = true
	v.send(ManagerMsg{Kind: MsgSetVolume, Delta: delta})
}

func (v *Volume) ToggleMute() {
	v.pendingFeedback = true
	v.send(ManagerMsg{Kind: MsgToggleMute})
}

// State is the last volume seen and whether one has been seen at all.
func (v *Volume) State() (sensor.VolumeState, bool) { return v.state, v.known }

func (v *Volume) Name() string           { return v.log.Name() }
func (v *Volume) Area() image.Rectangle  { return v.area }
func (v *Volume) HAlign() draw.Align     { return v.opts.HAlign }
func (v *Volume) VAlign() draw.Align     { return v.opts.VAlign }
func (v *Volume) DesiredHeight() int     { return v.opts.DesiredHeight }
func (v *Volume) DesiredWidth(h int) int { return h }

func (v *Volume) Resize(area image.Rectangle) {
	v.area = area
	v.dirty = true
	v.icon.Resize(area)
	v.progress.Resize(area)
}

func (v *Volume) ShouldRedraw() bool {
	changed := false
drain:
	for {
		select {
		case st := <-v.states:
			v.state, v.known = st, true
			changed = true
		default:
			break drain
		}
	}

	if changed {
		if v.state.Muted {
			v.icon.SetKind(draw.IconSpeakerMuted)
			v.progress.SetFilledColor(v.opts.Palette.Muted)
		} else {
			v.icon.SetKind(draw.IconSpeaker)
			v.progress.SetFilledColor(v.opts.Palette.HighlightMed)
		}
		v.progress.SetProgress(v.state.Percent)

		if v.pendingFeedback && v.opts.Feedback != nil {
			if err := v.opts.Feedback(); err != nil {
				v.log.Warn("failed to play feedback", "error", err)
			}
		}
		v.pendingFeedback = false
	}

	return v.dirty || v.icon.ShouldRedraw() || v.progress.ShouldRedraw()
}

func (v *Volume) Draw(ctx *draw.Context) error {
	if err := v.progress.Draw(ctx); err != nil {
		return err
	}
	if err := v.icon.Draw(ctx); err != nil {
		return err
	}
	v.dirty = false
	return nil
}

// Click toggles mute on a left click.
func (v *Volume) Click(button widget.ClickType, _ image.Point) error {
	if button == widget.LeftClick {
		v.ToggleMute()
	}
	return nil
}

// Scroll raises the volume when scrolling up and lowers it when scrolling
// down.
func (v *Volume) Scroll(_, dy float64, _ image.Point) error {
	switch {
	case dy < 0:
		v.SetVolume(v.opts.Step)
	case dy > 0:
		v.SetVolume(-v.opts.Step)
	}
	return nil
}

func (v *Volume) Motion(image.Point) error      { return nil }
func (v *Volume) MotionLeave(image.Point) error { return nil }

// Close stops the worker and waits for it.
func (v *Volume) Close() error {
	select {
	case v.cmds <- ManagerMsg{Kind: MsgClose}:
	case <-v.done:
	}
	<-v.done
	return nil
}
