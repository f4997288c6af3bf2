// Package bar composes the widgets into the three regions of the bar and
// renders frames into a software canvas with damage tracking.
package bar

import (
	"errors"
	"image"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

// Options configures a Bar.
type Options struct {
	Palette draw.Palette

	// Height is the configured bar height.
	Height int
	// FallbackWidth is used when the compositor reports a width of zero.
	FallbackWidth int

	// Damage outlines each frame's damage for debugging.
	Damage bool
	// HeightTest grows the requested height every frame.
	HeightTest bool

	Left, Center, Right []widget.Widget
}

// Bar owns the canvas and the left, centre and right containers.
type Bar struct {
	log  logging.Scope
	id   ulid.ULID
	opts Options

	left, center, right *widget.Container
	containers          []*widget.Container

	canvas     *image.RGBA
	fullRedraw bool
	lastDamage []image.Rectangle
	testHeight int

	hovered *widget.Container

	hooks []func()
}

// New creates a bar. Resize must be called before the first Frame.
func New(log logging.Scope, opts Options) *Bar {
	if opts.FallbackWidth <= 0 {
		opts.FallbackWidth = config.Default().Bar.FallbackWidth
	}
	if opts.Height <= 0 {
		opts.Height = config.Default().Bar.Height
	}

	b := &Bar{
		log:        log,
		id:         ulid.Make(),
		opts:       opts,
		fullRedraw: true,
		testHeight: opts.Height,
	}
	b.left = widget.NewContainer(log.Child("left"), widget.ContainerOptions{Inner: draw.Start}, opts.Left...)
	b.center = widget.NewContainer(log.Child("center"), widget.ContainerOptions{Inner: draw.Center}, opts.Center...)
	b.right = widget.NewContainer(log.Child("right"), widget.ContainerOptions{Inner: draw.End}, opts.Right...)
	b.containers = []*widget.Container{b.left, b.center, b.right}

	log.Info("bar created", "instance", b.id.String(),
		"left", len(opts.Left), "center", len(opts.Center), "right", len(opts.Right))
	return b
}

// ID identifies this bar instance in logs and snapshots.
func (b *Bar) ID() ulid.ULID { return b.id }

// Canvas is the frame buffer Frame draws into.
func (b *Bar) Canvas() *image.RGBA { return b.canvas }

// Bounds is the canvas rectangle, empty before the first Resize.
func (b *Bar) Bounds() image.Rectangle {
	if b.canvas == nil {
		return image.Rectangle{}
	}
	return b.canvas.Bounds()
}

// Widgets lists every widget on the bar, left to right by region.
func (b *Bar) Widgets() []widget.Widget {
	var all []widget.Widget
	for _, c := range b.containers {
		all = append(all, c.Widgets()...)
	}
	return all
}

// OnFrame registers a function run after each frame's redraw poll, used
// for side effects of widget state such as notifications.
func (b *Bar) OnFrame(fn func()) {
	b.hooks = append(b.hooks, fn)
}

// Resize reallocates the canvas and lays the regions out again. A zero
// width uses the fallback width and a zero height the configured one.
func (b *Bar) Resize(width, height int) {
	if width <= 0 {
		b.log.Debug("no width given, using fallback", "width", b.opts.FallbackWidth)
		width = b.opts.FallbackWidth
	}
	if height <= 0 {
		height = b.opts.Height
	}
	b.log.Debug("resize", "width", width, "height", height)

	if b.canvas == nil || b.canvas.Bounds().Dx() != width || b.canvas.Bounds().Dy() != height {
		b.canvas = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	b.layout()
}

func (b *Bar) layout() {
	bounds := b.canvas.Bounds()
	height := bounds.Dy()

	place := func(c *widget.Container, align draw.Align) {
		w := min(c.DesiredWidth(height), bounds.Dx())
		area := draw.PlaceAt(bounds, image.Pt(w, height), align, draw.Center)
		b.log.Trace("placing region", "region", c.Name(), "area", area)
		c.Resize(area)
	}
	place(b.left, draw.Start)
	place(b.right, draw.End)
	place(b.center, draw.Center)

	b.fullRedraw = true
}

// Frame polls every widget, draws what changed and returns the damaged
// rectangles. A full redraw returns the whole canvas.
func (b *Bar) Frame() []image.Rectangle {
	if b.canvas == nil {
		b.Resize(0, 0)
	}

	redraw := make([]bool, len(b.containers))
	for i, c := range b.containers {
		redraw[i] = c.ShouldRedraw()
	}
	for _, fn := range b.hooks {
		fn()
	}

	relayout := false
	for _, c := range b.containers {
		if c.NeedsRelayout() {
			relayout = true
		}
	}
	if relayout {
		b.log.Debug("widget size changed, laying out again")
		b.layout()
	}

	bounds := b.canvas.Bounds()
	full := b.fullRedraw
	ctx := draw.NewContext(b.canvas, full)
	if full {
		ctx.Fill(bounds, b.opts.Palette.Surface)
	}

	for i, c := range b.containers {
		if !full && !redraw[i] {
			continue
		}
		if err := c.Draw(ctx); err != nil {
			b.log.Warn("region failed to draw", "region", c.Name(), "error", err)
		}
	}

	if b.opts.Damage {
		drawn := slices.Clone(ctx.Damage)
		for _, r := range b.lastDamage {
			ctx.Outline(r, b.opts.Palette.Surface)
			ctx.AddDamage(r)
		}
		for _, r := range drawn {
			ctx.Outline(r, b.opts.Palette.Love)
		}
		b.lastDamage = drawn
	}

	if full {
		b.fullRedraw = false
		b.log.Debug("full redraw")
		return []image.Rectangle{bounds}
	}
	return ctx.Damage
}

// RequestFullRedraw makes the next Frame repaint everything.
func (b *Bar) RequestFullRedraw() { b.fullRedraw = true }

// NextHeight returns the height the surface should have for the next
// frame. It only changes with the height test enabled, where it grows by
// one pixel per call and wraps back to the configured height.
func (b *Bar) NextHeight() int {
	if !b.opts.HeightTest {
		return b.opts.Height
	}
	b.testHeight++
	if b.testHeight > config.MaxHeight {
		b.testHeight = b.opts.Height
	}
	b.log.Trace("height test", "height", b.testHeight)
	return b.testHeight
}

func (b *Bar) at(p image.Point) *widget.Container {
	for _, c := range b.containers {
		if p.In(c.Area()) {
			return c
		}
	}
	return nil
}

func (b *Bar) Click(button widget.ClickType, p image.Point) error {
	b.log.Trace("click", "button", button, "point", p)
	if c := b.at(p); c != nil {
		return c.Click(button, p)
	}
	return nil
}

// Motion routes to the region under the pointer and sends MotionLeave to
// the region it left.
func (b *Bar) Motion(p image.Point) error {
	var errs []error
	target := b.at(p)
	if b.hovered != nil && b.hovered != target {
		errs = append(errs, b.hovered.MotionLeave(p))
	}
	if target != nil {
		errs = append(errs, target.Motion(p))
	}
	b.hovered = target
	return errors.Join(errs...)
}

func (b *Bar) MotionLeave(p image.Point) error {
	if b.hovered == nil {
		return nil
	}
	c := b.hovered
	b.hovered = nil
	return c.MotionLeave(p)
}

func (b *Bar) Scroll(dx, dy float64, p image.Point) error {
	b.log.Trace("scroll", "dx", dx, "dy", dy, "point", p)
	if c := b.at(p); c != nil {
		return c.Scroll(dx, dy, p)
	}
	return nil
}

// Close stops every widget worker.
func (b *Bar) Close() error {
	var errs []error
	for _, c := range b.containers {
		errs = append(errs, c.Close())
	}
	b.log.Info("bar closed", "instance", b.id.String())
	return errors.Join(errs...)
}
