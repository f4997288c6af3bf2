// Package widget defines the Widget interface shared by everything drawn on
// the bar, together with the placement helpers and the Container that lays
// widgets out side by side.
package widget

import (
	"image"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

// Widget is a rectangular piece of the bar.
type Widget interface {
	// Name identifies the widget in logs.
	Name() string

	// Area is the rectangle the widget was last resized to.
	Area() image.Rectangle

	HAlign() draw.Align
	VAlign() draw.Align

	DesiredHeight() int
	DesiredWidth(height int) int

	// Resize forces the widget into area. The next Draw must repaint all
	// of it.
	Resize(area image.Rectangle)

	// ShouldRedraw polls the widget's data source and reports whether
	// anything visible changed. It is called once per frame before Draw.
	ShouldRedraw() bool

	Draw(ctx *draw.Context) error

	// Click, Motion and Scroll receive surface coordinates inside Area.
	Click(button ClickType, p image.Point) error
	Motion(p image.Point) error
	MotionLeave(p image.Point) error
	Scroll(dx, dy float64, p image.Point) error
}

// Closer is implemented by widgets that own background workers.
type Closer interface {
	Close() error
}

// Relayouter is implemented by widgets whose desired width can change
// after construction. NeedsRelayout reports a change since the previous
// call, and the owner then lays its widgets out again.
type Relayouter interface {
	NeedsRelayout() bool
}

// ClickType is the mouse button of a click.
type ClickType uint8

const (
	LeftClick ClickType = iota
	RightClick
	MiddleClick
	OtherClick
)

// Linux input event codes for the three main buttons.
const (
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// NewClickType maps a Linux input button code.
func NewClickType(button uint32) ClickType {
	switch button {
	case btnLeft:
		return LeftClick
	case btnRight:
		return RightClick
	case btnMiddle:
		return MiddleClick
	default:
		return OtherClick
	}
}

// ClickTypeFromGTK maps GDK button numbers (1 primary, 2 middle, 3 secondary).
func ClickTypeFromGTK(button uint) ClickType {
	switch button {
	case 1:
		return LeftClick
	case 2:
		return MiddleClick
	case 3:
		return RightClick
	default:
		return OtherClick
	}
}

func (c ClickType) String() string {
	switch c {
	case LeftClick:
		return "left"
	case RightClick:
		return "right"
	case MiddleClick:
		return "middle"
	default:
		return "other"
	}
}

// NoInput provides no-op pointer handlers for widgets that ignore input.
type NoInput struct{}

func (NoInput) Click(ClickType, image.Point) error         { return nil }
func (NoInput) Motion(image.Point) error                   { return nil }
func (NoInput) MotionLeave(image.Point) error              { return nil }
func (NoInput) Scroll(float64, float64, image.Point) error { return nil }
