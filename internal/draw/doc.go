// Package draw is the software rasteriser behind the bar.
//
// Everything is drawn into an *image.RGBA canvas through a Context that
// records which rectangles changed, so the display layer only has to copy
// and damage those regions. The primitives (TextBox, Progress, Icon) keep
// enough state to know when they need to be drawn again.
package draw
