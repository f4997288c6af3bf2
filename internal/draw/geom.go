package draw

import (
	"fmt"
	"image"
	"math"
)

type alignKind uint8

const (
	alignCenter alignKind = iota
	alignStart
	alignEnd
	alignCenterAt
)

// Align positions a box inside a larger one along a single axis.
// The zero value is Center.
type Align struct {
	kind  alignKind
	ratio float64
}

var (
	Start  = Align{kind: alignStart}
	End    = Align{kind: alignEnd}
	Center = Align{kind: alignCenter}
)

// CenterAt places the box so that ratio of it lies after the centre line.
// CenterAt(0.5) is the same as Center.
func CenterAt(ratio float64) Align {
	return Align{kind: alignCenterAt, ratio: clamp01(ratio)}
}

func (a Align) String() string {
	switch a.kind {
	case alignStart:
		return "start"
	case alignEnd:
		return "end"
	case alignCenterAt:
		return fmt.Sprintf("center-at(%.3f)", a.ratio)
	default:
		return "center"
	}
}

// Direction is the edge a progress bar fills towards.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "north"
	}
}

// PlaceAt returns a rectangle of the given size inside r, positioned by the
// horizontal and vertical alignment. The size is clamped to r, so the
// result is always contained in r.
func PlaceAt(r image.Rectangle, size image.Point, h, v Align) image.Rectangle {
	size.X = max(0, min(size.X, r.Dx()))
	size.Y = max(0, min(size.Y, r.Dy()))

	x0 := place(r.Min.X, r.Max.X, size.X, h)
	y0 := place(r.Min.Y, r.Max.Y, size.Y, v)

	return image.Rect(x0, y0, x0+size.X, y0+size.Y)
}

func place(lo, hi, size int, a Align) int {
	switch a.kind {
	case alignStart:
		return lo
	case alignEnd:
		return hi - size
	case alignCenterAt:
		c := float64(lo+hi) / 2
		start := int(math.Round(c - float64(size)*(1-a.ratio)))
		return max(lo, min(start, hi-size))
	default:
		return lo + (hi-lo-size)/2
	}
}

// ShrinkTop moves the top edge of r down by n pixels.
func ShrinkTop(r image.Rectangle, n int) image.Rectangle {
	r.Min.Y = min(r.Min.Y+max(n, 0), r.Max.Y)
	return r
}

// ShrinkBottom moves the bottom edge of r up by n pixels.
func ShrinkBottom(r image.Rectangle, n int) image.Rectangle {
	r.Max.Y = max(r.Max.Y-max(n, 0), r.Min.Y)
	return r
}

// ShrinkLeft moves the left edge of r right by n pixels.
func ShrinkLeft(r image.Rectangle, n int) image.Rectangle {
	r.Min.X = min(r.Min.X+max(n, 0), r.Max.X)
	return r
}

// ShrinkRight moves the right edge of r left by n pixels.
func ShrinkRight(r image.Rectangle, n int) image.Rectangle {
	r.Max.X = max(r.Max.X-max(n, 0), r.Min.X)
	return r
}

// Margins are inner margins in pixels.
type Margins struct {
	Top, Bottom, Left, Right int
}

// Uniform returns margins of n pixels on every side.
func Uniform(n int) Margins {
	return Margins{Top: n, Bottom: n, Left: n, Right: n}
}

func (m Margins) Horizontal() int { return m.Left + m.Right }
func (m Margins) Vertical() int   { return m.Top + m.Bottom }

// Apply shrinks r by the margins.
func (m Margins) Apply(r image.Rectangle) image.Rectangle {
	return ShrinkRight(ShrinkLeft(ShrinkBottom(ShrinkTop(r, m.Top), m.Bottom), m.Left), m.Right)
}

// RatioMargins are inner margins expressed as a fraction of the area they
// are applied to. Top and Bottom scale with the height, Left and Right with
// the width.
type RatioMargins struct {
	Top, Bottom, Left, Right float64
}

// Pixels resolves the ratios against r.
func (m RatioMargins) Pixels(r image.Rectangle) Margins {
	h, w := float64(r.Dy()), float64(r.Dx())
	return Margins{
		Top:    int(h * m.Top),
		Bottom: int(h * m.Bottom),
		Left:   int(w * m.Left),
		Right:  int(w * m.Right),
	}
}

func (m RatioMargins) horizontal() float64 { return m.Left + m.Right }
func (m RatioMargins) vertical() float64   { return m.Top + m.Bottom }

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
