package widget

import (
	"image"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// Placeable is anything the placement helpers can size and position.
// Widgets are, and so are the draw primitives widgets are built from.
type Placeable interface {
	DesiredWidth(height int) int
	Resize(area image.Rectangle)
}

// desiredWidths asks every widget for its width at the area's height and
// scales them all down by the same ratio when they do not fit.
func desiredWidths[W Placeable](log logging.Scope, widgets []W, area image.Rectangle) []int {
	widths := make([]int, len(widgets))
	total := 0
	for i, w := range widgets {
		widths[i] = max(0, w.DesiredWidth(area.Dy()))
		total += widths[i]
	}

	if total > area.Dx() {
		scale := float64(area.Dx()) / float64(total)
		log.Debug("scaling widgets down", "total", total, "available", area.Dx(), "scale", scale)
		for i := range widths {
			widths[i] = int(float64(widths[i]) * scale)
		}
	}
	return widths
}

// StackStart places widgets one after another from the left edge of area.
func StackStart[W Placeable](log logging.Scope, widgets []W, area image.Rectangle) {
	x := area.Min.X
	for i, width := range desiredWidths(log, widgets, area) {
		r := image.Rect(x, area.Min.Y, x+width, area.Max.Y)
		log.Trace("stack start", "index", i, "area", r)
		widgets[i].Resize(r)
		x += width
	}
}

// StackEnd places widgets one after another from the right edge of area.
// The first widget ends up rightmost.
func StackEnd[W Placeable](log logging.Scope, widgets []W, area image.Rectangle) {
	x := area.Max.X
	for i, width := range desiredWidths(log, widgets, area) {
		r := image.Rect(x-width, area.Min.Y, x, area.Max.Y)
		log.Trace("stack end", "index", i, "area", r)
		widgets[i].Resize(r)
		x -= width
	}
}

// Center places widgets outward from the centre line. With an odd count
// the first widget straddles the centre; the rest alternate left then
// right, each one further out than the last.
func Center[W Placeable](log logging.Scope, widgets []W, area image.Rectangle) {
	if len(widgets) == 0 {
		return
	}
	widths := desiredWidths(log, widgets, area)
	height := area.Dy()
	mid := area.Min.X + area.Dx()/2

	left := image.Rect(area.Min.X, area.Min.Y, mid, area.Max.Y)
	right := image.Rect(mid, area.Min.Y, area.Max.X, area.Max.Y)

	i := 0
	if len(widgets)%2 == 1 {
		r := draw.PlaceAt(area, image.Pt(widths[0], height), draw.Center, draw.Center)
		log.Trace("center", "index", 0, "area", r)
		widgets[0].Resize(r)

		left.Max.X = r.Min.X
		right.Min.X = r.Max.X
		i = 1
	}

	for n := 0; i < len(widgets); i, n = i+1, n+1 {
		var r image.Rectangle
		if n%2 == 0 {
			r = draw.PlaceAt(left, image.Pt(widths[i], height), draw.End, draw.Center)
			left.Max.X = r.Min.X
		} else {
			r = draw.PlaceAt(right, image.Pt(widths[i], height), draw.Start, draw.Center)
			right.Min.X = r.Max.X
		}
		log.Trace("center", "index", i, "area", r)
		widgets[i].Resize(r)
	}
}
