package draw

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoRoom is returned when text cannot be fitted into an area at any size.
var ErrNoRoom = errors.New("no room to render text")

var (
	monoOnce sync.Once
	mono     *opentype.Font
	monoErr  error

	facesMu sync.Mutex
	faces   = map[int]font.Face{}
)

func embeddedFont() (*opentype.Font, error) {
	monoOnce.Do(func() {
		mono, monoErr = opentype.Parse(gomono.TTF)
	})
	return mono, monoErr
}

// Face returns the embedded monospace face at px pixels per em. Faces are
// cached for the life of the process.
func Face(px int) (font.Face, error) {
	px = max(px, 1)

	facesMu.Lock()
	defer facesMu.Unlock()

	if f, ok := faces[px]; ok {
		return f, nil
	}

	f, err := embeddedFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face at %dpx: %w", px, err)
	}
	faces[px] = face
	return face, nil
}

// Layout is a face fitted to a box together with its pixel metrics.
type Layout struct {
	Face    font.Face
	Px      int
	Ascent  int
	Descent int
	Advance fixed.Int26_6 // advance of one monospace cell
}

// Height is the line height in pixels.
func (l Layout) Height() int { return l.Ascent + l.Descent }

// Width is the advance of n cells in pixels.
func (l Layout) Width(n int) int { return (l.Advance * fixed.Int26_6(n)).Ceil() }

// Fit finds the largest face for which cells characters fit in maxW by
// maxH pixels.
func Fit(cells, maxW, maxH int) (Layout, error) {
	if maxW <= 0 || maxH <= 0 {
		return Layout{}, ErrNoRoom
	}

	px := maxH
	for px > 0 {
		l, err := layoutAt(px)
		if err != nil {
			return Layout{}, err
		}

		h, w := l.Height(), l.Width(cells)
		if h <= maxH && w <= maxW {
			return l, nil
		}

		next := px - 1
		if h > maxH {
			next = min(next, px*maxH/h)
		}
		if w > maxW {
			next = min(next, px*maxW/w)
		}
		px = next
	}
	return Layout{}, ErrNoRoom
}

func layoutAt(px int) (Layout, error) {
	face, err := Face(px)
	if err != nil {
		return Layout{}, err
	}
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('0')
	if !ok {
		adv = fixed.I(px) / 2
	}
	return Layout{
		Face:    face,
		Px:      px,
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
		Advance: adv,
	}, nil
}

// drawString renders s starting at the pen position (x, baseline),
// clipped to clip.
func drawString(ctx *Context, l Layout, fg Color, clip image.Rectangle, x fixed.Int26_6, baseline int, s string) {
	clip = clip.Intersect(ctx.Canvas.Rect)
	if clip.Empty() || l.Face == nil {
		return
	}
	dst, ok := ctx.Canvas.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: l.Face,
		Dot:  fixed.Point26_6{X: x, Y: fixed.I(baseline)},
	}
	d.DrawString(s)
}
