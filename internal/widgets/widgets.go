// Package widgets holds the concrete widgets shown on the bar. Each one
// is built from draw primitives and satisfies widget.Widget.
package widgets

import (
	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

// Style is shared by every widget's options.
type Style struct {
	Palette draw.Palette

	// DesiredHeight is the bar height the widget is designed for.
	DesiredHeight int

	HAlign, VAlign draw.Align

	// Outline draws primitive bounds for layout debugging.
	Outline bool
}

// BG is the colour widgets clear to.
func (s Style) BG() draw.Color { return s.Palette.Surface }

// textHeight is the glyph height used for full-height text.
func textHeight(h int) int { return h * 20 / 23 }
