package draw

import (
	"image"
)

// Context is handed to every widget while a frame is drawn. Widgets paint
// into Canvas and report the rectangles they touched through AddDamage.
type Context struct {
	Canvas *image.RGBA

	// Damage collects the regions changed during this frame.
	Damage []image.Rectangle

	// FullRedraw is set when the whole canvas was cleared for this frame,
	// e.g. after a resize. Widgets must repaint everything they own.
	FullRedraw bool
}

// NewContext returns a drawing context over canvas.
func NewContext(canvas *image.RGBA, fullRedraw bool) *Context {
	return &Context{
		Canvas:     canvas,
		Damage:     make([]image.Rectangle, 0, 16),
		FullRedraw: fullRedraw,
	}
}

// Bounds is the canvas rectangle.
func (c *Context) Bounds() image.Rectangle {
	return c.Canvas.Bounds()
}

// Put overwrites a single pixel.
func (c *Context) Put(p image.Point, col Color) {
	if !p.In(c.Canvas.Rect) {
		return
	}
	i := c.Canvas.PixOffset(p.X, p.Y)
	r, g, b, a := col.premul()
	px := c.Canvas.Pix[i : i+4 : i+4]
	px[0], px[1], px[2], px[3] = r, g, b, a
}

// PutComposite draws a single pixel over the existing one.
func (c *Context) PutComposite(p image.Point, col Color) {
	if !p.In(c.Canvas.Rect) {
		return
	}
	over(c.Canvas.Pix[c.Canvas.PixOffset(p.X, p.Y):], col)
}

// Fill overwrites every pixel in r.
func (c *Context) Fill(r image.Rectangle, col Color) {
	r = r.Intersect(c.Canvas.Rect)
	if r.Empty() {
		return
	}

	pr, pg, pb, pa := col.premul()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.Canvas.Pix[c.Canvas.PixOffset(r.Min.X, y):c.Canvas.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = pr, pg, pb, pa
		}
	}
}

// FillComposite draws col over every pixel in r.
func (c *Context) FillComposite(r image.Rectangle, col Color) {
	switch col.A {
	case 0:
		return
	case 0xff:
		c.Fill(r, col)
		return
	}

	r = r.Intersect(c.Canvas.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.Canvas.Pix[c.Canvas.PixOffset(r.Min.X, y):c.Canvas.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			over(row[i:], col)
		}
	}
}

// Outline draws a one pixel border just inside r.
func (c *Context) Outline(r image.Rectangle, col Color) {
	if r.Empty() {
		return
	}
	c.Fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	c.Fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	c.Fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	c.Fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// AddDamage records r as changed. Empty rectangles and parts outside the
// canvas are dropped.
func (c *Context) AddDamage(r image.Rectangle) {
	r = r.Intersect(c.Canvas.Rect)
	if r.Empty() {
		return
	}
	c.Damage = append(c.Damage, r)
}

// DamageBounds returns the smallest rectangle covering all damage.
func (c *Context) DamageBounds() image.Rectangle {
	var u image.Rectangle
	for _, d := range c.Damage {
		u = u.Union(d)
	}
	return u
}

// At reads back a pixel as a straight-alpha colour.
func (c *Context) At(p image.Point) Color {
	if !p.In(c.Canvas.Rect) {
		return Clear
	}
	i := c.Canvas.PixOffset(p.X, p.Y)
	return unpremul(c.Canvas.Pix[i], c.Canvas.Pix[i+1], c.Canvas.Pix[i+2], c.Canvas.Pix[i+3])
}

// over composites col onto the premultiplied pixel at px[0:4].
func over(px []byte, col Color) {
	sr, sg, sb, sa := col.premul()
	inv := uint16(0xff - sa)
	px[0] = sr + uint8(uint16(px[0])*inv/0xff)
	px[1] = sg + uint8(uint16(px[1])*inv/0xff)
	px[2] = sb + uint8(uint16(px[2])*inv/0xff)
	px[3] = sa + uint8(uint16(px[3])*inv/0xff)
}

func unpremul(r, g, b, a uint8) Color {
	if a == 0 {
		return Clear
	}
	if a == 0xff {
		return Color{R: r, G: g, B: b, A: a}
	}
	un := func(v uint8) uint8 {
		return uint8(min(0xff, (uint16(v)*0xff+uint16(a)/2)/uint16(a)))
	}
	return Color{R: un(r), G: un(g), B: un(b), A: a}
}

// CopyToARGB converts the region r of src into dst, a premultiplied
// little-endian ARGB32 buffer with the given stride. src must be anchored
// at the origin.
func CopyToARGB(dst []byte, stride int, src *image.RGBA, r image.Rectangle) {
	r = r.Intersect(src.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.PixOffset(r.Min.X, y)
		di := y*stride + r.Min.X*4
		for x := r.Min.X; x < r.Max.X; x++ {
			if di+4 > len(dst) {
				return
			}
			dst[di+0] = src.Pix[si+2]
			dst[di+1] = src.Pix[si+1]
			dst[di+2] = src.Pix[si+0]
			dst[di+3] = src.Pix[si+3]
			si += 4
			di += 4
		}
	}
}
