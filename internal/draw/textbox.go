package draw

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// TextBoxOptions configures a TextBox.
type TextBoxOptions struct {
	Text   string
	FG, BG Color

	// DesiredTextHeight caps the text height in pixels. Zero fills the
	// area height.
	DesiredTextHeight int

	// DesiredWidth overrides the width reported to layout. Zero uses the
	// width of the text.
	DesiredWidth int

	// FitCells is the number of characters the font is sized for. Zero
	// sizes for the current text, so longer text shrinks the font.
	FitCells int

	Margins        Margins
	HAlign, VAlign Align

	// Outline draws the area and text bounds for layout debugging.
	Outline bool
}

// TextBox renders a single line of monospace text. After the first draw
// only the character cells that changed are repainted.
type TextBox struct {
	log  logging.Scope
	opts TextBoxOptions

	text  []rune
	drawn []rune

	area     image.Rectangle
	areaUsed image.Rectangle
	layout   Layout
	baseline int

	redraw bool
}

// NewTextBox creates a text box. It has no area until Resize is called.
func NewTextBox(log logging.Scope, opts TextBoxOptions) *TextBox {
	return &TextBox{
		log:    log,
		opts:   opts,
		text:   []rune(opts.Text),
		redraw: true,
	}
}

func (t *TextBox) Text() string                { return string(t.text) }
func (t *TextBox) Area() image.Rectangle       { return t.area }
func (t *TextBox) AreaUsed() image.Rectangle   { return t.areaUsed }
func (t *TextBox) HAlign() Align               { return t.opts.HAlign }
func (t *TextBox) VAlign() Align               { return t.opts.VAlign }
func (t *TextBox) FG() Color                   { return t.opts.FG }
func (t *TextBox) BG() Color                   { return t.opts.BG }
func (t *TextBox) Contains(p image.Point) bool { return p.In(t.area) }

// SetText replaces the text. When the number of characters changes the
// box is laid out again.
func (t *TextBox) SetText(s string) {
	next := []rune(s)
	if string(next) == string(t.text) {
		return
	}
	relayout := len(next) != len(t.text)
	t.text = next
	if relayout && !t.area.Empty() {
		t.Resize(t.area)
	}
}

func (t *TextBox) SetFG(c Color) {
	if c != t.opts.FG {
		t.opts.FG = c
		t.redraw = true
	}
}

func (t *TextBox) SetBG(c Color) {
	if c != t.opts.BG {
		t.opts.BG = c
		t.redraw = true
	}
}

func (t *TextBox) cells() int {
	if t.opts.FitCells > 0 {
		return max(t.opts.FitCells, len(t.text))
	}
	return max(len(t.text), 1)
}

// DesiredHeight is the configured text height plus vertical margins.
func (t *TextBox) DesiredHeight() int {
	return t.opts.DesiredTextHeight + t.opts.Margins.Vertical()
}

// DesiredWidth is the width the text would take at the given height.
func (t *TextBox) DesiredWidth(height int) int {
	if t.opts.DesiredWidth > 0 {
		return t.opts.DesiredWidth
	}
	textH := height - t.opts.Margins.Vertical()
	if t.opts.DesiredTextHeight > 0 {
		textH = min(textH, t.opts.DesiredTextHeight)
	}
	l, err := Fit(t.cells(), 1<<20, textH)
	if err != nil {
		return t.opts.Margins.Horizontal()
	}
	return l.Width(t.cells()) + t.opts.Margins.Horizontal()
}

// Resize lays the text out in area.
func (t *TextBox) Resize(area image.Rectangle) {
	t.area = area
	t.redraw = true
	t.drawn = nil

	inner := t.opts.Margins.Apply(area)
	maxH := inner.Dy()
	if t.opts.DesiredTextHeight > 0 {
		maxH = min(maxH, t.opts.DesiredTextHeight)
	}

	l, err := Fit(t.cells(), inner.Dx(), maxH)
	if err != nil {
		t.log.Debug("text does not fit", "area", area, "text", string(t.text))
		t.layout = Layout{}
		t.areaUsed = image.Rectangle{Min: inner.Min, Max: inner.Min}
		return
	}

	t.layout = l
	size := image.Pt(l.Width(len(t.text)), l.Height())
	t.areaUsed = PlaceAt(inner, size, t.opts.HAlign, t.opts.VAlign)
	t.baseline = t.areaUsed.Min.Y + l.Ascent
	t.log.Trace("text box resized", "area", area, "used", t.areaUsed, "px", l.Px)
}

// ShouldRedraw reports whether the box differs from what was last drawn.
func (t *TextBox) ShouldRedraw() bool {
	return t.redraw || string(t.text) != string(t.drawn)
}

func (t *TextBox) cell(i int) image.Rectangle {
	x0 := fixed.I(t.areaUsed.Min.X) + t.layout.Advance*fixed.Int26_6(i)
	x1 := x0 + t.layout.Advance
	return image.Rect(x0.Floor(), t.area.Min.Y, x1.Ceil(), t.area.Max.Y).Intersect(t.area)
}

// erase overwrites r with the background so that a translucent background
// does not let earlier glyphs show through. A clear background leaves what
// is beneath untouched.
func (t *TextBox) erase(ctx *Context, r image.Rectangle) {
	if t.opts.BG.A == 0 {
		return
	}
	ctx.Fill(r, t.opts.BG)
}

// Draw paints the box. Unless a full redraw is needed only changed
// characters are painted and damaged.
func (t *TextBox) Draw(ctx *Context) error {
	full := ctx.FullRedraw || t.redraw || len(t.drawn) != len(t.text)

	if full {
		t.erase(ctx, t.area)
		drawString(ctx, t.layout, t.opts.FG, t.area, fixed.I(t.areaUsed.Min.X), t.baseline, string(t.text))
		ctx.AddDamage(t.area)
	} else {
		for i, r := range t.text {
			if r == t.drawn[i] {
				continue
			}
			cell := t.cell(i)
			t.erase(ctx, cell)
			x := fixed.I(t.areaUsed.Min.X) + t.layout.Advance*fixed.Int26_6(i)
			drawString(ctx, t.layout, t.opts.FG, cell, x, t.baseline, string(r))
			ctx.AddDamage(cell)
		}
	}

	t.drawn = append(t.drawn[:0], t.text...)
	t.redraw = false

	if t.opts.Outline {
		ctx.Outline(t.area, RosePine.Pine)
		ctx.Outline(t.areaUsed, RosePine.Iris)
	}
	return nil
}
