package draw

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

func TestFit(t *testing.T) {
	l, err := Fit(4, 1000, 30)
	require.NoError(t, err)
	assert.LessOrEqual(t, l.Height(), 30)
	assert.Greater(t, l.Px, 10)

	narrow, err := Fit(4, 40, 30)
	require.NoError(t, err)
	assert.LessOrEqual(t, narrow.Width(4), 40)
	assert.Less(t, narrow.Px, l.Px, "width constrains the size")

	_, err = Fit(4, 0, 30)
	assert.ErrorIs(t, err, ErrNoRoom)
}

func TestTextBox_LayoutAndDraw(t *testing.T) {
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{
		Text: "12",
		FG:   RosePine.Rose,
		BG:   RosePine.Surface,
	})
	assert.Greater(t, tb.DesiredWidth(30), 0)

	area := image.Rect(10, 0, 60, 30)
	tb.Resize(area)
	assert.True(t, tb.AreaUsed().In(area))
	assert.True(t, tb.ShouldRedraw())

	ctx := newCtx(100, 30, false)
	require.NoError(t, tb.Draw(ctx))
	assert.Equal(t, []image.Rectangle{area}, ctx.Damage)
	assert.Equal(t, RosePine.Surface, ctx.At(image.Pt(10, 0)))
	assert.False(t, tb.ShouldRedraw())

	inked := false
	for y := area.Min.Y; y < area.Max.Y && !inked; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if ctx.At(image.Pt(x, y)) != RosePine.Surface {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked, "glyphs were rendered")
}

func TestTextBox_RedrawsOnlyChangedCells(t *testing.T) {
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{Text: "10", FG: RosePine.Rose, BG: RosePine.Surface})
	tb.Resize(image.Rect(0, 0, 60, 30))
	require.NoError(t, tb.Draw(newCtx(60, 30, false)))

	tb.SetText("10")
	assert.False(t, tb.ShouldRedraw(), "same text is not a change")

	tb.SetText("11")
	assert.True(t, tb.ShouldRedraw())

	ctx := newCtx(60, 30, false)
	require.NoError(t, tb.Draw(ctx))
	require.Len(t, ctx.Damage, 1)
	assert.Less(t, ctx.Damage[0].Dx(), tb.Area().Dx(), "only the second cell is damaged")
	assert.GreaterOrEqual(t, ctx.Damage[0].Min.X, tb.AreaUsed().Min.X)
}

func TestTextBox_TranslucentBackgroundErasesOldGlyphs(t *testing.T) {
	bg := Color{R: 0x19, G: 0x17, B: 0x24, A: 0x80}
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{Text: "10", FG: RosePine.Rose, BG: bg})
	tb.Resize(image.Rect(0, 0, 60, 30))

	canvas := image.NewRGBA(image.Rect(0, 0, 60, 30))
	require.NoError(t, tb.Draw(NewContext(canvas, false)))

	tb.SetText("1 ")
	ctx := NewContext(canvas, false)
	require.NoError(t, tb.Draw(ctx))
	require.Len(t, ctx.Damage, 1)

	ref := NewContext(image.NewRGBA(image.Rect(0, 0, 1, 1)), false)
	ref.Fill(ref.Canvas.Rect, bg)
	want := ref.At(image.Pt(0, 0))

	cell := ctx.Damage[0]
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			require.Equal(t, want, ctx.At(image.Pt(x, y)), "pixel %d,%d", x, y)
		}
	}
}

func TestTextBox_FullRedrawAndColours(t *testing.T) {
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{Text: "ab", BG: RosePine.Base})
	area := image.Rect(0, 0, 40, 20)
	tb.Resize(area)
	require.NoError(t, tb.Draw(newCtx(40, 20, false)))

	ctx := newCtx(40, 20, true)
	require.NoError(t, tb.Draw(ctx))
	assert.Equal(t, []image.Rectangle{area}, ctx.Damage)

	tb.SetFG(RosePine.Love)
	assert.True(t, tb.ShouldRedraw())
	require.NoError(t, tb.Draw(newCtx(40, 20, false)))
	tb.SetBG(RosePine.Base)
	assert.False(t, tb.ShouldRedraw())
}

func TestTextBox_LengthChangeRelayouts(t *testing.T) {
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{Text: "Now", FitCells: 14, BG: RosePine.Base})
	tb.Resize(image.Rect(0, 0, 200, 30))
	before := tb.AreaUsed()

	tb.SetText("5 Minutes Ago")
	after := tb.AreaUsed()
	assert.Greater(t, after.Dx(), before.Dx())
	assert.Equal(t, before.Dy(), after.Dy(), "font size is stable when sized for a fixed cell count")

	ctx := newCtx(200, 30, false)
	require.NoError(t, tb.Draw(ctx))
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 200, 30)}, ctx.Damage)
}

func TestTextBox_NoRoom(t *testing.T) {
	tb := NewTextBox(logging.Scope{}, TextBoxOptions{Text: "x", BG: RosePine.Base})
	tb.Resize(image.Rect(0, 0, 0, 0))
	assert.NotPanics(t, func() { _ = tb.Draw(newCtx(10, 10, false)) })
}

func TestProgress_SetProgress(t *testing.T) {
	p := NewProgress(logging.Scope{}, ProgressOptions{Start: 0, End: 100, Filled: RosePine.Love, BG: RosePine.Base})
	p.Resize(image.Rect(0, 0, 10, 20))
	require.NoError(t, p.Draw(newCtx(10, 20, false)))
	assert.False(t, p.ShouldRedraw())

	p.SetProgress(50)
	assert.True(t, p.ShouldRedraw())
	assert.InDelta(t, 0.5, p.Ratio(), 1e-9)
	assert.Equal(t, image.Rect(0, 10, 10, 20), p.FilledArea())

	ctx := newCtx(10, 20, false)
	require.NoError(t, p.Draw(ctx))
	assert.Equal(t, RosePine.Love, ctx.At(image.Pt(5, 15)))
	assert.Equal(t, RosePine.Base, ctx.At(image.Pt(5, 5)))

	p.SetProgress(49)
	assert.False(t, p.ShouldRedraw(), "sub-pixel changes do not redraw")

	p.SetProgress(500)
	assert.Equal(t, 100.0, p.Value())
	p.SetProgress(-3)
	assert.Equal(t, 0.0, p.Value())
}

func TestProgress_Directions(t *testing.T) {
	area := image.Rect(0, 0, 20, 10)
	tests := []struct {
		dir  Direction
		want image.Rectangle
	}{
		{North, image.Rect(0, 5, 20, 10)},
		{South, image.Rect(0, 0, 20, 5)},
		{East, image.Rect(0, 0, 10, 10)},
		{West, image.Rect(10, 0, 20, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			p := NewProgress(logging.Scope{}, ProgressOptions{End: 1, Direction: tt.dir})
			p.Resize(area)
			p.SetProgress(0.5)
			assert.Equal(t, tt.want, p.FilledArea())
		})
	}
}

func TestProgress_MarginsAndColours(t *testing.T) {
	p := NewProgress(logging.Scope{}, ProgressOptions{
		End:     1,
		Margins: RatioMargins{Top: 0.2, Bottom: 0.2, Left: 0.1, Right: 0.1},
	})
	p.Resize(image.Rect(0, 0, 100, 50))
	assert.Equal(t, image.Rect(10, 10, 90, 40), p.AreaUsed())
	require.NoError(t, p.Draw(newCtx(100, 50, false)))

	p.SetFilledColor(RosePine.Gold)
	assert.True(t, p.ShouldRedraw())
	require.NoError(t, p.Draw(newCtx(100, 50, false)))
	p.SetUnfilledColor(Clear)
	p.SetBG(Clear)
	assert.False(t, p.ShouldRedraw())
}

func TestIcon_ResizeKeepsAspect(t *testing.T) {
	ic := NewIcon(logging.Scope{}, IconOptions{Kind: IconBattery, FG: RosePine.Rose})
	assert.Equal(t, 60, ic.DesiredWidth(30))

	ic.Resize(image.Rect(0, 0, 100, 30))
	used := ic.AreaUsed()
	assert.Equal(t, 30, used.Dy())
	assert.Equal(t, 60, used.Dx())

	ic.Resize(image.Rect(0, 0, 20, 30))
	assert.Equal(t, 20, ic.AreaUsed().Dx())
	assert.Equal(t, 10, ic.AreaUsed().Dy())
}

func TestIcon_Draw(t *testing.T) {
	ic := NewIcon(logging.Scope{}, IconOptions{Kind: IconChip, FG: RosePine.Foam, BG: RosePine.Base})
	ic.Resize(image.Rect(0, 0, 40, 40))

	ctx := newCtx(40, 40, false)
	require.NoError(t, ic.Draw(ctx))
	assert.Equal(t, RosePine.Foam, ctx.At(image.Pt(10, 20)), "chip body is filled")
	assert.Equal(t, RosePine.Base, ctx.At(image.Pt(20, 20)), "chip centre is a hole")
	assert.Equal(t, RosePine.Base, ctx.At(image.Pt(1, 1)))
	assert.False(t, ic.ShouldRedraw())

	ic.SetFG(RosePine.Love)
	assert.True(t, ic.ShouldRedraw())
	ic.SetKind(IconMemory)
	assert.Equal(t, "memory", ic.Kind().String())
}
