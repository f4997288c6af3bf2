package draw

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a straight (non-premultiplied) 8-bit RGBA colour.
// The zero value is fully transparent.
type Color struct {
	R, G, B, A uint8
}

var _ color.Color = Color{}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// RGBA implements color.Color. The returned channels are premultiplied.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	r = uint32(c.R) * a / 0xff
	g = uint32(c.G) * a / 0xff
	b = uint32(c.B) * a / 0xff
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

func (c Color) premul() (r, g, b, a uint8) {
	a16 := uint16(c.A)
	return uint8(uint16(c.R) * a16 / 0xff), uint8(uint16(c.G) * a16 / 0xff), uint8(uint16(c.B) * a16 / 0xff), c.A
}

// Opaque reports whether the colour fully covers what is beneath it.
func (c Color) Opaque() bool { return c.A == 0xff }

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(strength float64) Color {
	c.A = uint8(clamp01(strength)*255 + 0.5)
	return c
}

// Blend linearly interpolates every channel towards other.
func (c Color) Blend(other Color, ratio float64) Color {
	t := clamp01(ratio)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return Color{R: mix(c.R, other.R), G: mix(c.G, other.G), B: mix(c.B, other.B), A: mix(c.A, other.A)}
}

// Composite places c over under using the Porter-Duff over operator.
func (c Color) Composite(under Color) Color {
	if c.A == 0xff || under.A == 0 {
		return c
	}
	if c.A == 0 {
		return under
	}

	sa := float64(c.A) / 255
	da := float64(under.A) / 255 * (1 - sa)
	oa := sa + da

	ch := func(s, d uint8) uint8 {
		return uint8((float64(s)*sa+float64(d)*da)/oa + 0.5)
	}
	return Color{
		R: ch(c.R, under.R),
		G: ch(c.G, under.G),
		B: ch(c.B, under.B),
		A: uint8(oa*255 + 0.5),
	}
}

// ARGB8888 returns the premultiplied little-endian ARGB32 bytes of c, the
// layout used by wl_shm and cairo image surfaces.
func (c Color) ARGB8888() [4]byte {
	r, g, b, a := c.premul()
	return [4]byte{b, g, r, a}
}

// Hex formats the colour as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.Hex() }

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q: expected #rrggbb or #rrggbbaa", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// UnmarshalText lets colours appear as hex strings in TOML.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// Clear is fully transparent.
var Clear = Color{}

// Palette names the colours widgets draw with, after the Rosé Pine roles.
type Palette struct {
	Base          Color `toml:"base"`
	Surface       Color `toml:"surface"`
	Overlay       Color `toml:"overlay"`
	Muted         Color `toml:"muted"`
	Subtle        Color `toml:"subtle"`
	Text          Color `toml:"text"`
	Love          Color `toml:"love"`
	Gold          Color `toml:"gold"`
	Rose          Color `toml:"rose"`
	Pine          Color `toml:"pine"`
	Foam          Color `toml:"foam"`
	Iris          Color `toml:"iris"`
	HighlightLow  Color `toml:"highlight_low"`
	HighlightMed  Color `toml:"highlight_med"`
	HighlightHigh Color `toml:"highlight_high"`
}

// RosePine is the built-in palette.
var RosePine = Palette{
	Base:          RGB(0x19, 0x17, 0x24),
	Surface:       RGB(0x1f, 0x1d, 0x2e),
	Overlay:       RGB(0x26, 0x23, 0x3a),
	Muted:         RGB(0x6e, 0x6a, 0x86),
	Subtle:        RGB(0x90, 0x8c, 0xaa),
	Text:          RGB(0xe0, 0xde, 0xf4),
	Love:          RGB(0xeb, 0x6f, 0x92),
	Gold:          RGB(0xf6, 0xc1, 0x77),
	Rose:          RGB(0xeb, 0xbc, 0xba),
	Pine:          RGB(0x31, 0x74, 0x8f),
	Foam:          RGB(0x9c, 0xcf, 0xd8),
	Iris:          RGB(0xc4, 0xa7, 0xe7),
	HighlightLow:  RGB(0x21, 0x20, 0x2e),
	HighlightMed:  RGB(0x40, 0x3d, 0x52),
	HighlightHigh: RGB(0x52, 0x4f, 0x67),
}
