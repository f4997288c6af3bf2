package widget

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

type fakeWidget struct {
	name    string
	width   int
	height  int
	area    image.Rectangle
	redraw  bool
	drawErr error

	draws   int
	clicks  []ClickType
	motions int
	leaves  int
	scrolls int
	closed  bool
}

func (f *fakeWidget) Name() string                { return f.name }
func (f *fakeWidget) Area() image.Rectangle       { return f.area }
func (f *fakeWidget) HAlign() draw.Align          { return draw.Center }
func (f *fakeWidget) VAlign() draw.Align          { return draw.Center }
func (f *fakeWidget) DesiredHeight() int          { return f.height }
func (f *fakeWidget) DesiredWidth(int) int        { return f.width }
func (f *fakeWidget) Resize(area image.Rectangle) { f.area = area }
func (f *fakeWidget) ShouldRedraw() bool          { return f.redraw }

func (f *fakeWidget) Draw(*draw.Context) error {
	f.draws++
	return f.drawErr
}

func (f *fakeWidget) Click(b ClickType, _ image.Point) error {
	f.clicks = append(f.clicks, b)
	return nil
}

func (f *fakeWidget) Motion(image.Point) error      { f.motions++; return nil }
func (f *fakeWidget) MotionLeave(image.Point) error { f.leaves++; return nil }

func (f *fakeWidget) Scroll(float64, float64, image.Point) error {
	f.scrolls++
	return nil
}

func (f *fakeWidget) Close() error { f.closed = true; return nil }

func fakes(widths ...int) ([]*fakeWidget, []Widget) {
	fs := make([]*fakeWidget, len(widths))
	ws := make([]Widget, len(widths))
	for i, w := range widths {
		fs[i] = &fakeWidget{name: string(rune('a' + i)), width: w, height: 10}
		ws[i] = fs[i]
	}
	return fs, ws
}

func TestNewClickType(t *testing.T) {
	assert.Equal(t, LeftClick, NewClickType(272))
	assert.Equal(t, RightClick, NewClickType(273))
	assert.Equal(t, MiddleClick, NewClickType(274))
	assert.Equal(t, OtherClick, NewClickType(275))

	assert.Equal(t, LeftClick, ClickTypeFromGTK(1))
	assert.Equal(t, MiddleClick, ClickTypeFromGTK(2))
	assert.Equal(t, RightClick, ClickTypeFromGTK(3))
	assert.Equal(t, OtherClick, ClickTypeFromGTK(8))
	assert.Equal(t, "middle", MiddleClick.String())
}

func TestStackStart(t *testing.T) {
	fs, ws := fakes(10, 20, 30)
	StackStart(logging.Scope{}, ws, image.Rect(5, 0, 200, 30))

	assert.Equal(t, image.Rect(5, 0, 15, 30), fs[0].area)
	assert.Equal(t, image.Rect(15, 0, 35, 30), fs[1].area)
	assert.Equal(t, image.Rect(35, 0, 65, 30), fs[2].area)
}

func TestStackEnd(t *testing.T) {
	fs, ws := fakes(10, 20)
	StackEnd(logging.Scope{}, ws, image.Rect(0, 0, 100, 30))

	assert.Equal(t, image.Rect(90, 0, 100, 30), fs[0].area, "first widget is rightmost")
	assert.Equal(t, image.Rect(70, 0, 90, 30), fs[1].area)
}

func TestStack_ScalesDownToFit(t *testing.T) {
	fs, ws := fakes(100, 100, 100)
	area := image.Rect(0, 0, 150, 30)
	StackStart(logging.Scope{}, ws, area)

	total := 0
	for _, f := range fs {
		assert.Equal(t, 50, f.area.Dx())
		assert.True(t, f.area.In(area))
		total += f.area.Dx()
	}
	assert.LessOrEqual(t, total, area.Dx())
}

func TestCenter_Odd(t *testing.T) {
	fs, ws := fakes(20, 10, 10)
	Center(logging.Scope{}, ws, image.Rect(0, 0, 100, 30))

	assert.Equal(t, image.Rect(40, 0, 60, 30), fs[0].area)
	assert.Equal(t, image.Rect(30, 0, 40, 30), fs[1].area, "second goes left")
	assert.Equal(t, image.Rect(60, 0, 70, 30), fs[2].area, "third goes right")
}

func TestCenter_Even(t *testing.T) {
	fs, ws := fakes(10, 10, 10, 10)
	Center(logging.Scope{}, ws, image.Rect(0, 0, 100, 30))

	assert.Equal(t, image.Rect(40, 0, 50, 30), fs[0].area)
	assert.Equal(t, image.Rect(50, 0, 60, 30), fs[1].area)
	assert.Equal(t, image.Rect(30, 0, 40, 30), fs[2].area)
	assert.Equal(t, image.Rect(60, 0, 70, 30), fs[3].area)
}

func TestCenter_ScalesWithFractionalRatio(t *testing.T) {
	fs, ws := fakes(60, 60, 60)
	area := image.Rect(0, 0, 90, 30)
	Center(logging.Scope{}, ws, area)

	for _, f := range fs {
		assert.Equal(t, 30, f.area.Dx())
		assert.True(t, f.area.In(area))
	}
}

func TestCenter_Empty(t *testing.T) {
	assert.NotPanics(t, func() { Center(logging.Scope{}, []Widget(nil), image.Rect(0, 0, 10, 10)) })
}

func TestContainer_Desired(t *testing.T) {
	fs, ws := fakes(10, 20)
	fs[1].height = 25
	c := NewContainer(logging.Scope{}, ContainerOptions{}, ws...)

	assert.Equal(t, 25, c.DesiredHeight())
	assert.Equal(t, 30, c.DesiredWidth(30))

	c = NewContainer(logging.Scope{}, ContainerOptions{DesiredHeight: 7, DesiredWidth: 9}, ws...)
	assert.Equal(t, 7, c.DesiredHeight())
	assert.Equal(t, 9, c.DesiredWidth(30))
}

func TestContainer_RedrawOnlyDirtyChildren(t *testing.T) {
	fs, ws := fakes(10, 10, 10)
	fs[0].redraw = true
	fs[2].redraw = true
	fs[2].drawErr = errors.New("boom")

	c := NewContainer(logging.Scope{}, ContainerOptions{Inner: draw.Start}, ws...)
	c.Resize(image.Rect(0, 0, 100, 30))

	require.True(t, c.ShouldRedraw())
	ctx := draw.NewContext(image.NewRGBA(image.Rect(0, 0, 100, 30)), false)
	require.NoError(t, c.Draw(ctx), "child errors are logged, not returned")

	assert.Equal(t, 1, fs[0].draws)
	assert.Equal(t, 0, fs[1].draws)
	assert.Equal(t, 1, fs[2].draws)

	for _, f := range fs {
		f.redraw = false
	}
	assert.False(t, c.ShouldRedraw())

	ctx.FullRedraw = true
	require.NoError(t, c.Draw(ctx))
	assert.Equal(t, 1, fs[1].draws, "full redraw draws everyone")
}

func TestContainer_RoutesInput(t *testing.T) {
	fs, ws := fakes(10, 10)
	c := NewContainer(logging.Scope{}, ContainerOptions{Inner: draw.Start}, ws...)
	c.Resize(image.Rect(0, 0, 100, 30))

	require.NoError(t, c.Click(RightClick, image.Pt(15, 5)))
	assert.Equal(t, []ClickType{RightClick}, fs[1].clicks)
	assert.Empty(t, fs[0].clicks)

	require.NoError(t, c.Click(LeftClick, image.Pt(90, 5)), "clicks on empty space are ignored")

	require.NoError(t, c.Motion(image.Pt(2, 2)))
	require.NoError(t, c.Motion(image.Pt(3, 2)))
	assert.Equal(t, 2, fs[0].motions)
	assert.Equal(t, 0, fs[0].leaves)

	require.NoError(t, c.Motion(image.Pt(12, 2)))
	assert.Equal(t, 1, fs[0].leaves, "moving across children leaves the old one")
	assert.Equal(t, 1, fs[1].motions)

	require.NoError(t, c.MotionLeave(image.Pt(12, 2)))
	assert.Equal(t, 1, fs[1].leaves)
	require.NoError(t, c.MotionLeave(image.Pt(12, 2)))
	assert.Equal(t, 1, fs[1].leaves, "a second leave is a no-op")

	require.NoError(t, c.Scroll(0, 1, image.Pt(5, 5)))
	assert.Equal(t, 1, fs[0].scrolls)
}

func TestContainer_Close(t *testing.T) {
	fs, ws := fakes(10, 10)
	c := NewContainer(logging.Scope{}, ContainerOptions{}, ws...)
	c.Add(&fakeWidget{name: "late"})
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Close())
	assert.True(t, fs[0].closed)
	assert.True(t, fs[1].closed)
}
