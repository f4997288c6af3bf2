package draw

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCtx(w, h int, full bool) *Context {
	return NewContext(image.NewRGBA(image.Rect(0, 0, w, h)), full)
}

func TestContext_FillAndPut(t *testing.T) {
	ctx := newCtx(10, 10, false)

	ctx.Fill(image.Rect(2, 2, 5, 5), RosePine.Love)
	assert.Equal(t, RosePine.Love, ctx.At(image.Pt(2, 2)))
	assert.Equal(t, RosePine.Love, ctx.At(image.Pt(4, 4)))
	assert.Equal(t, Clear, ctx.At(image.Pt(5, 5)))

	ctx.Put(image.Pt(0, 0), RosePine.Foam)
	assert.Equal(t, RosePine.Foam, ctx.At(image.Pt(0, 0)))

	assert.NotPanics(t, func() {
		ctx.Put(image.Pt(-1, 20), RosePine.Foam)
		ctx.Fill(image.Rect(-5, -5, 50, 50), RosePine.Base)
	})
	assert.Equal(t, RosePine.Base, ctx.At(image.Pt(9, 9)))
}

func TestContext_FillComposite(t *testing.T) {
	ctx := newCtx(4, 4, false)
	ctx.Fill(ctx.Bounds(), RGB(0, 0, 255))

	ctx.FillComposite(ctx.Bounds(), Clear)
	assert.Equal(t, RGB(0, 0, 255), ctx.At(image.Pt(1, 1)))

	ctx.FillComposite(image.Rect(0, 0, 2, 2), RGB(255, 0, 0).WithAlpha(0.5))
	got := ctx.At(image.Pt(0, 0))
	assert.Equal(t, uint8(0xff), got.A)
	assert.InDelta(t, 128, int(got.R), 2)
	assert.InDelta(t, 127, int(got.B), 2)

	ctx.PutComposite(image.Pt(3, 3), RGB(0, 255, 0))
	assert.Equal(t, RGB(0, 255, 0), ctx.At(image.Pt(3, 3)))
}

func TestContext_Outline(t *testing.T) {
	ctx := newCtx(6, 6, false)
	ctx.Outline(image.Rect(1, 1, 5, 5), RosePine.Iris)

	assert.Equal(t, RosePine.Iris, ctx.At(image.Pt(1, 1)))
	assert.Equal(t, RosePine.Iris, ctx.At(image.Pt(4, 4)))
	assert.Equal(t, RosePine.Iris, ctx.At(image.Pt(1, 3)))
	assert.Equal(t, Clear, ctx.At(image.Pt(2, 2)), "outline leaves the interior alone")
	assert.Equal(t, Clear, ctx.At(image.Pt(0, 0)))
}

func TestContext_Damage(t *testing.T) {
	ctx := newCtx(100, 20, false)

	ctx.AddDamage(image.Rect(0, 0, 10, 10))
	ctx.AddDamage(image.Rect(90, 10, 120, 30))
	ctx.AddDamage(image.Rect(200, 200, 210, 210))
	ctx.AddDamage(image.Rectangle{})

	assert.Equal(t, []image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(90, 10, 100, 20),
	}, ctx.Damage)
	assert.Equal(t, image.Rect(0, 0, 100, 20), ctx.DamageBounds())
}

func TestCopyToARGB(t *testing.T) {
	ctx := newCtx(3, 2, false)
	ctx.Fill(ctx.Bounds(), RosePine.Surface)
	ctx.Put(image.Pt(1, 1), RGB(1, 2, 3))

	stride := 3 * 4
	dst := make([]byte, stride*2)
	CopyToARGB(dst, stride, ctx.Canvas, image.Rect(1, 1, 2, 2))

	assert.Equal(t, []byte{3, 2, 1, 0xff}, dst[stride+4:stride+8])
	assert.Equal(t, []byte{0, 0, 0, 0}, dst[0:4], "outside the region is untouched")

	CopyToARGB(dst, stride, ctx.Canvas, ctx.Bounds())
	assert.Equal(t, RosePine.Surface.ARGB8888(), [4]byte(dst[0:4]))
}
