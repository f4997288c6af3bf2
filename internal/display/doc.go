// Package display puts the bar on screen as a Wayland layer-shell surface.
//
// A Window owns a GTK4 window with a single drawing area. Frames are
// rendered by the bar into its software canvas on a main-loop timer and
// the damaged rectangles are copied into a cairo image surface, which the
// drawing area paints. Pointer input from GTK controllers is forwarded to
// the bar in surface coordinates.
package display
