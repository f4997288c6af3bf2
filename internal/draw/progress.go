package draw

import (
	"image"
	"math"

	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// ProgressOptions configures a Progress bar.
type ProgressOptions struct {
	// Start and End are the values that map to empty and full.
	Start, End float64

	Direction Direction

	Filled, Unfilled, BG Color

	Margins RatioMargins

	// DesiredWidth and DesiredHeight bound the bar. Zero means unbounded.
	DesiredWidth, DesiredHeight int

	HAlign, VAlign Align

	Outline bool
}

// Progress is a bar that fills towards Direction as its value rises.
type Progress struct {
	log  logging.Scope
	opts ProgressOptions

	value         float64
	ratioUnfilled float64
	filledPx      int

	area     image.Rectangle
	areaUsed image.Rectangle

	redraw bool
}

// NewProgress creates an empty progress bar.
func NewProgress(log logging.Scope, opts ProgressOptions) *Progress {
	return &Progress{
		log:           log,
		opts:          opts,
		value:         opts.Start,
		ratioUnfilled: 1,
		filledPx:      -1,
		redraw:        true,
	}
}

func (p *Progress) Area() image.Rectangle     { return p.area }
func (p *Progress) AreaUsed() image.Rectangle { return p.areaUsed }
func (p *Progress) Value() float64            { return p.value }

// Ratio is the filled fraction in [0, 1].
func (p *Progress) Ratio() float64 { return 1 - p.ratioUnfilled }

// SetProgress sets the value, clamped to the bounds. A redraw is requested
// only when the number of filled pixels changes.
func (p *Progress) SetProgress(v float64) {
	lo, hi := math.Min(p.opts.Start, p.opts.End), math.Max(p.opts.Start, p.opts.End)
	if math.IsNaN(v) {
		v = lo
	}
	if v < lo || v > hi {
		p.log.Trace("progress out of bounds, clamping", "value", v, "start", p.opts.Start, "end", p.opts.End)
	}
	v = math.Max(lo, math.Min(hi, v))
	p.value = v

	span := p.opts.End - p.opts.Start
	if span == 0 {
		p.ratioUnfilled = 0
	} else {
		p.ratioUnfilled = 1 - clamp01((v-p.opts.Start)/span)
	}

	if px := p.filledPixels(); px != p.filledPx {
		p.redraw = true
	}
}

func (p *Progress) SetFilledColor(c Color) {
	if c != p.opts.Filled {
		p.opts.Filled = c
		p.redraw = true
	}
}

func (p *Progress) SetUnfilledColor(c Color) {
	if c != p.opts.Unfilled {
		p.opts.Unfilled = c
		p.redraw = true
	}
}

func (p *Progress) SetBG(c Color) {
	if c != p.opts.BG {
		p.opts.BG = c
		p.redraw = true
	}
}

func (p *Progress) DesiredHeight() int {
	if p.opts.DesiredHeight == 0 {
		return 0
	}
	return int(float64(p.opts.DesiredHeight) / math.Max(0.01, 1-p.opts.Margins.vertical()))
}

func (p *Progress) DesiredWidth(height int) int {
	if p.opts.DesiredWidth == 0 {
		return height
	}
	return int(float64(p.opts.DesiredWidth) / math.Max(0.01, 1-p.opts.Margins.horizontal()))
}

// Resize places the bar inside area, less margins.
func (p *Progress) Resize(area image.Rectangle) {
	p.area = area
	p.redraw = true

	inner := p.opts.Margins.Pixels(area).Apply(area)
	size := inner.Size()
	if p.opts.DesiredWidth > 0 {
		size.X = min(size.X, p.opts.DesiredWidth)
	}
	if p.opts.DesiredHeight > 0 {
		size.Y = min(size.Y, p.opts.DesiredHeight)
	}
	p.areaUsed = PlaceAt(inner, size, p.opts.HAlign, p.opts.VAlign)
	p.log.Trace("progress resized", "area", area, "used", p.areaUsed)
}

func (p *Progress) ShouldRedraw() bool { return p.redraw }

func (p *Progress) axis() int {
	switch p.opts.Direction {
	case East, West:
		return p.areaUsed.Dx()
	default:
		return p.areaUsed.Dy()
	}
}

func (p *Progress) filledPixels() int {
	n := p.axis()
	return n - int(float64(n)*p.ratioUnfilled)
}

// FilledArea is the part of the bar painted with the filled colour.
func (p *Progress) FilledArea() image.Rectangle {
	unfilled := p.axis() - p.filledPixels()
	switch p.opts.Direction {
	case East:
		return ShrinkRight(p.areaUsed, unfilled)
	case South:
		return ShrinkBottom(p.areaUsed, unfilled)
	case West:
		return ShrinkLeft(p.areaUsed, unfilled)
	default:
		return ShrinkTop(p.areaUsed, unfilled)
	}
}

// Draw paints the whole bar.
func (p *Progress) Draw(ctx *Context) error {
	ctx.FillComposite(p.area, p.opts.BG)
	ctx.FillComposite(p.areaUsed, p.opts.Unfilled)
	ctx.FillComposite(p.FilledArea(), p.opts.Filled)
	ctx.AddDamage(p.area)

	p.filledPx = p.filledPixels()
	p.redraw = false

	if p.opts.Outline {
		ctx.Outline(p.area, RosePine.Pine)
		ctx.Outline(p.areaUsed, RosePine.Iris)
	}
	return nil
}
