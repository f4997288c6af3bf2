package widget

import (
	"errors"
	"image"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// ContainerOptions configures a Container.
type ContainerOptions struct {
	HAlign, VAlign draw.Align

	// Inner chooses how children are laid out: Start stacks from the
	// left, End from the right and Center outward from the middle.
	Inner draw.Align

	// DesiredHeight and DesiredWidth override the values derived from the
	// children when non-zero.
	DesiredHeight int
	DesiredWidth  int
}

// Container holds other widgets and lays them out side by side.
type Container struct {
	log  logging.Scope
	opts ContainerOptions

	widgets      []Widget
	shouldRedraw []bool

	area       image.Rectangle
	lastMotion *image.Point
}

// NewContainer creates a container over widgets.
func NewContainer(log logging.Scope, opts ContainerOptions, widgets ...Widget) *Container {
	return &Container{
		log:          log,
		opts:         opts,
		widgets:      widgets,
		shouldRedraw: make([]bool, len(widgets)),
	}
}

// Add appends a widget. The container must be resized afterwards.
func (c *Container) Add(w Widget) {
	c.widgets = append(c.widgets, w)
	c.shouldRedraw = append(c.shouldRedraw, false)
}

func (c *Container) Widgets() []Widget     { return c.widgets }
func (c *Container) Len() int              { return len(c.widgets) }
func (c *Container) Name() string          { return c.log.Name() }
func (c *Container) Area() image.Rectangle { return c.area }
func (c *Container) HAlign() draw.Align    { return c.opts.HAlign }
func (c *Container) VAlign() draw.Align    { return c.opts.VAlign }

func (c *Container) DesiredHeight() int {
	if c.opts.DesiredHeight > 0 {
		return c.opts.DesiredHeight
	}
	h := 0
	for _, w := range c.widgets {
		h = max(h, w.DesiredHeight())
	}
	return h
}

func (c *Container) DesiredWidth(height int) int {
	if c.opts.DesiredWidth > 0 {
		return c.opts.DesiredWidth
	}
	total := 0
	for _, w := range c.widgets {
		total += w.DesiredWidth(height)
	}
	return total
}

func (c *Container) Resize(area image.Rectangle) {
	c.area = area
	switch c.opts.Inner {
	case draw.Start:
		StackStart(c.log, c.widgets, area)
	case draw.End:
		StackEnd(c.log, c.widgets, area)
	default:
		Center(c.log, c.widgets, area)
	}
}

// ShouldRedraw asks every child, not just until the first yes, so each one
// gets to poll its source. The answers are kept for Draw.
func (c *Container) ShouldRedraw() bool {
	redraw := false
	for i, w := range c.widgets {
		c.shouldRedraw[i] = w.ShouldRedraw()
		redraw = redraw || c.shouldRedraw[i]
	}
	return redraw
}

// Draw draws the children that asked to be redrawn, or all of them on a
// full redraw. A failing child is logged and skipped.
func (c *Container) Draw(ctx *draw.Context) error {
	for i, w := range c.widgets {
		if !ctx.FullRedraw && !c.shouldRedraw[i] {
			continue
		}
		c.shouldRedraw[i] = false
		if err := w.Draw(ctx); err != nil {
			c.log.Warn("widget failed to draw", "child", w.Name(), "error", err)
		}
	}
	return nil
}

func (c *Container) find(p image.Point) Widget {
	for _, w := range c.widgets {
		if p.In(w.Area()) {
			return w
		}
	}
	return nil
}

func (c *Container) Click(button ClickType, p image.Point) error {
	if w := c.find(p); w != nil {
		return w.Click(button, p)
	}
	return nil
}

// Motion forwards to the child under the pointer. The child the pointer
// was over before gets MotionLeave when it is a different one.
func (c *Container) Motion(p image.Point) error {
	var errs []error
	target := c.find(p)

	if c.lastMotion != nil {
		if prev := c.find(*c.lastMotion); prev != nil && prev != target {
			errs = append(errs, prev.MotionLeave(p))
		}
	}
	if target != nil {
		errs = append(errs, target.Motion(p))
	}

	c.lastMotion = &p
	return errors.Join(errs...)
}

func (c *Container) MotionLeave(p image.Point) error {
	if c.lastMotion == nil {
		return nil
	}
	prev := c.find(*c.lastMotion)
	c.lastMotion = nil
	if prev != nil {
		return prev.MotionLeave(p)
	}
	return nil
}

func (c *Container) Scroll(dx, dy float64, p image.Point) error {
	if w := c.find(p); w != nil {
		return w.Scroll(dx, dy, p)
	}
	return nil
}

// NeedsRelayout reports whether any child's desired width changed.
func (c *Container) NeedsRelayout() bool {
	relayout := false
	for _, w := range c.widgets {
		if r, ok := w.(Relayouter); ok && r.NeedsRelayout() {
			relayout = true
		}
	}
	return relayout
}

// Close closes every child that owns background work.
func (c *Container) Close() error {
	var errs []error
	for _, w := range c.widgets {
		if cl, ok := w.(Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
