package draw

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceAt(t *testing.T) {
	area := image.Rect(10, 0, 110, 40)
	size := image.Pt(20, 10)

	tests := []struct {
		name string
		h, v Align
		want image.Rectangle
	}{
		{"start start", Start, Start, image.Rect(10, 0, 30, 10)},
		{"end end", End, End, image.Rect(90, 30, 110, 40)},
		{"center center", Center, Center, image.Rect(50, 15, 70, 25)},
		{"zero value is center", Align{}, Align{}, image.Rect(50, 15, 70, 25)},
		{"center at 0.75", CenterAt(0.75), Start, image.Rect(55, 0, 75, 10)},
		{"center at 0.5", CenterAt(0.5), Start, image.Rect(50, 0, 70, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceAt(area, size, tt.h, tt.v)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.In(area))
		})
	}
}

func TestPlaceAt_ClampsOversizedBox(t *testing.T) {
	area := image.Rect(0, 0, 50, 20)
	got := PlaceAt(area, image.Pt(80, 30), Center, Center)
	assert.Equal(t, area, got)

	got = PlaceAt(area, image.Pt(10, 10), CenterAt(1), Center)
	assert.True(t, got.In(area))
}

func TestShrink(t *testing.T) {
	r := image.Rect(0, 0, 10, 10)

	assert.Equal(t, image.Rect(0, 3, 10, 10), ShrinkTop(r, 3))
	assert.Equal(t, image.Rect(0, 0, 10, 7), ShrinkBottom(r, 3))
	assert.Equal(t, image.Rect(3, 0, 10, 10), ShrinkLeft(r, 3))
	assert.Equal(t, image.Rect(0, 0, 7, 10), ShrinkRight(r, 3))

	assert.True(t, ShrinkTop(r, 50).Empty())
	assert.True(t, ShrinkRight(r, 50).Empty())
	assert.Equal(t, r, ShrinkLeft(r, -4))
}

func TestMargins(t *testing.T) {
	m := Margins{Top: 1, Bottom: 2, Left: 3, Right: 4}
	assert.Equal(t, 3, m.Vertical())
	assert.Equal(t, 7, m.Horizontal())
	assert.Equal(t, image.Rect(3, 1, 16, 18), m.Apply(image.Rect(0, 0, 20, 20)))

	rm := RatioMargins{Top: 0.1, Bottom: 0.1, Left: 0.25, Right: 0}
	assert.Equal(t, Margins{Top: 2, Bottom: 2, Left: 10}, rm.Pixels(image.Rect(0, 0, 40, 20)))
}

func TestAlignString(t *testing.T) {
	assert.Equal(t, "start", Start.String())
	assert.Equal(t, "end", End.String())
	assert.Equal(t, "center", Center.String())
	assert.Equal(t, "center-at(0.550)", CenterAt(0.55).String())
	assert.Equal(t, "north", Direction(0).String())
}
