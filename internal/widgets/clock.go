package widgets

import (
	"fmt"
	"image"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

type ClockOptions struct {
	Style
	ShowSeconds bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Clock shows the local time as HH:MM or HH:MM:SS.
type Clock struct {
	widget.NoInput

	log  logging.Scope
	opts ClockOptions

	hours, minutes, seconds *draw.TextBox
	boxes                   []*draw.TextBox
	placement               []*draw.TextBox

	area image.Rectangle
}

func NewClock(log logging.Scope, opts ClockOptions) *Clock {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log.Info("initializing", "height", opts.DesiredHeight, "seconds", opts.ShowSeconds)

	digits := func(part string) *draw.TextBox {
		return draw.NewTextBox(log.Child(part), draw.TextBoxOptions{
			Text:              "00",
			FG:                opts.Palette.Rose,
			BG:                opts.BG(),
			DesiredTextHeight: textHeight(opts.DesiredHeight),
			Outline:           opts.Outline,
		})
	}
	spacer := func(part string) *draw.TextBox {
		return draw.NewTextBox(log.Child(part), draw.TextBoxOptions{
			Text:              ":",
			FG:                opts.Palette.Pine,
			BG:                opts.BG(),
			DesiredTextHeight: opts.DesiredHeight / 2,
			Outline:           opts.Outline,
		})
	}

	c := &Clock{
		log:     log,
		opts:    opts,
		hours:   digits("hours"),
		minutes: digits("minutes"),
	}
	spacer1 := spacer("spacer 1")

	if opts.ShowSeconds {
		c.seconds = digits("seconds")
		spacer2 := spacer("spacer 2")
		c.boxes = []*draw.TextBox{c.hours, spacer1, c.minutes, spacer2, c.seconds}
		c.placement = []*draw.TextBox{c.minutes, spacer1, spacer2, c.hours, c.seconds}
	} else {
		c.boxes = []*draw.TextBox{c.hours, spacer1, c.minutes}
		c.placement = []*draw.TextBox{spacer1, c.hours, c.minutes}
	}

	c.update()
	return c
}

func (c *Clock) update() {
	now := c.opts.Now()
	c.hours.SetText(fmt.Sprintf("%02d", now.Hour()))
	c.minutes.SetText(fmt.Sprintf("%02d", now.Minute()))
	if c.seconds != nil {
		c.seconds.SetText(fmt.Sprintf("%02d", now.Second()))
	}
}

// Text is the time as currently shown.
func (c *Clock) Text() string {
	s := c.hours.Text() + ":" + c.minutes.Text()
	if c.seconds != nil {
		s += ":" + c.seconds.Text()
	}
	return s
}

func (c *Clock) Name() string          { return c.log.Name() }
func (c *Clock) Area() image.Rectangle { return c.area }
func (c *Clock) HAlign() draw.Align    { return c.opts.HAlign }
func (c *Clock) VAlign() draw.Align    { return c.opts.VAlign }
func (c *Clock) DesiredHeight() int    { return c.opts.DesiredHeight }

func (c *Clock) DesiredWidth(height int) int {
	total := 0
	for _, b := range c.boxes {
		total += b.DesiredWidth(height)
	}
	return total
}

func (c *Clock) Resize(area image.Rectangle) {
	c.area = area
	widget.Center(c.log, c.placement, area)
}

func (c *Clock) ShouldRedraw() bool {
	c.update()
	for _, b := range c.boxes {
		if b.ShouldRedraw() {
			return true
		}
	}
	return false
}

func (c *Clock) Draw(ctx *draw.Context) error {
	for _, b := range c.boxes {
		if ctx.FullRedraw || b.ShouldRedraw() {
			if err := b.Draw(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
