package draw

import (
	"image"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// IconKind selects one of the built-in vector icons.
type IconKind uint8

const (
	IconBattery IconKind = iota
	IconBolt
	IconSpeaker
	IconSpeakerMuted
	IconChip
	IconMemory
)

func (k IconKind) String() string {
	switch k {
	case IconBattery:
		return "battery"
	case IconBolt:
		return "bolt"
	case IconSpeaker:
		return "speaker"
	case IconSpeakerMuted:
		return "speaker-muted"
	case IconChip:
		return "chip"
	case IconMemory:
		return "memory"
	default:
		return "unknown"
	}
}

type pt struct{ x, y float32 }

// shape is a set of closed contours in unit coordinates, y pointing down.
// Holes are wound opposite to their outline.
type shape struct {
	aspect   float64 // width / height
	contours [][]pt
}

func rect(x0, y0, x1, y1 float32) []pt {
	return []pt{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func hole(x0, y0, x1, y1 float32) []pt {
	return []pt{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
}

var shapes = map[IconKind]shape{
	IconBattery: {
		aspect: 2,
		contours: [][]pt{
			rect(0, 0.1, 0.9, 0.9),
			hole(0.06, 0.22, 0.84, 0.78),
			rect(0.9, 0.35, 1, 0.65),
		},
	},
	IconBolt: {
		aspect: 0.6,
		contours: [][]pt{{
			{0.65, 0}, {0.05, 0.58}, {0.45, 0.58}, {0.3, 1},
			{0.95, 0.4}, {0.55, 0.4}, {0.75, 0},
		}},
	},
	IconSpeaker: {
		aspect: 1.2,
		contours: [][]pt{
			rect(0, 0.35, 0.25, 0.65),
			{{0.25, 0.35}, {0.55, 0.1}, {0.55, 0.9}, {0.25, 0.65}},
			rect(0.68, 0.3, 0.75, 0.7),
			rect(0.85, 0.15, 0.92, 0.85),
		},
	},
	IconSpeakerMuted: {
		aspect: 1.2,
		contours: [][]pt{
			rect(0, 0.35, 0.25, 0.65),
			{{0.25, 0.35}, {0.55, 0.1}, {0.55, 0.9}, {0.25, 0.65}},
			{{0.65, 0.3}, {0.7, 0.25}, {1, 0.7}, {0.95, 0.75}},
			{{0.65, 0.7}, {0.95, 0.25}, {1, 0.3}, {0.7, 0.75}},
		},
	},
	IconChip:   chipShape(),
	IconMemory: memoryShape(),
}

func chipShape() shape {
	s := shape{aspect: 1}
	s.contours = append(s.contours, rect(0.2, 0.2, 0.8, 0.8), hole(0.32, 0.32, 0.68, 0.68))
	for _, at := range []float32{0.28, 0.46, 0.64} {
		s.contours = append(s.contours,
			rect(0.04, at, 0.2, at+0.08),
			rect(0.8, at, 0.96, at+0.08),
			rect(at, 0.04, at+0.08, 0.2),
			rect(at, 0.8, at+0.08, 0.96),
		)
	}
	return s
}

func memoryShape() shape {
	s := shape{aspect: 1.6}
	s.contours = append(s.contours,
		rect(0, 0.22, 1, 0.7),
		hole(0.08, 0.32, 0.3, 0.6),
		hole(0.39, 0.32, 0.61, 0.6),
		hole(0.7, 0.32, 0.92, 0.6),
	)
	for i := range 7 {
		x := 0.06 + float32(i)*0.135
		s.contours = append(s.contours, rect(x, 0.7, x+0.07, 0.82))
	}
	return s
}

type maskKey struct {
	kind IconKind
	w, h int
}

var (
	masksMu sync.Mutex
	masks   = map[maskKey]*image.Alpha{}
)

func iconMask(kind IconKind, w, h int) *image.Alpha {
	key := maskKey{kind, w, h}

	masksMu.Lock()
	defer masksMu.Unlock()
	if m, ok := masks[key]; ok {
		return m
	}

	z := vector.NewRasterizer(w, h)
	fw, fh := float32(w), float32(h)
	for _, c := range shapes[kind].contours {
		z.MoveTo(c[0].x*fw, c[0].y*fh)
		for _, p := range c[1:] {
			z.LineTo(p.x*fw, p.y*fh)
		}
		z.ClosePath()
	}
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(m, m.Bounds(), image.Opaque, image.Point{})
	masks[key] = m
	return m
}

// IconOptions configures an Icon.
type IconOptions struct {
	Kind   IconKind
	FG, BG Color

	Margins        RatioMargins
	HAlign, VAlign Align

	Outline bool
}

// Icon draws one vector icon as large as its area allows, keeping the
// icon's aspect ratio.
type Icon struct {
	log  logging.Scope
	opts IconOptions

	area     image.Rectangle
	areaUsed image.Rectangle

	redraw bool
}

func NewIcon(log logging.Scope, opts IconOptions) *Icon {
	return &Icon{log: log, opts: opts, redraw: true}
}

func (i *Icon) Kind() IconKind              { return i.opts.Kind }
func (i *Icon) Area() image.Rectangle       { return i.area }
func (i *Icon) AreaUsed() image.Rectangle   { return i.areaUsed }
func (i *Icon) ShouldRedraw() bool          { return i.redraw }
func (i *Icon) Contains(p image.Point) bool { return p.In(i.area) }

func (i *Icon) SetKind(k IconKind) {
	if k != i.opts.Kind {
		i.opts.Kind = k
		i.Resize(i.area)
	}
}

func (i *Icon) SetFG(c Color) {
	if c != i.opts.FG {
		i.opts.FG = c
		i.redraw = true
	}
}

func (i *Icon) SetBG(c Color) {
	if c != i.opts.BG {
		i.opts.BG = c
		i.redraw = true
	}
}

// DesiredWidth is the width needed to show the icon at full height.
func (i *Icon) DesiredWidth(height int) int {
	iconH := float64(height) * (1 - i.opts.Margins.vertical())
	iconW := iconH * shapes[i.opts.Kind].aspect
	return int(math.Ceil(iconW / math.Max(0.01, 1-i.opts.Margins.horizontal())))
}

func (i *Icon) Resize(area image.Rectangle) {
	i.area = area
	i.redraw = true

	inner := i.opts.Margins.Pixels(area).Apply(area)
	aspect := shapes[i.opts.Kind].aspect
	w, h := float64(inner.Dx()), float64(inner.Dy())
	if w > h*aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	i.areaUsed = PlaceAt(inner, image.Pt(int(w), int(h)), i.opts.HAlign, i.opts.VAlign)
	i.log.Trace("icon resized", "icon", i.opts.Kind, "area", area, "used", i.areaUsed)
}

// Draw paints the background over the area and the icon in FG.
func (i *Icon) Draw(ctx *Context) error {
	ctx.FillComposite(i.area, i.opts.BG)

	if !i.areaUsed.Empty() && i.opts.FG.A != 0 {
		m := iconMask(i.opts.Kind, i.areaUsed.Dx(), i.areaUsed.Dy())
		xdraw.DrawMask(ctx.Canvas, i.areaUsed, image.NewUniform(i.opts.FG), image.Point{}, m, image.Point{}, xdraw.Over)
	}
	ctx.AddDamage(i.area)
	i.redraw = false

	if i.opts.Outline {
		ctx.Outline(i.area, RosePine.Pine)
		ctx.Outline(i.areaUsed, RosePine.Iris)
	}
	return nil
}
