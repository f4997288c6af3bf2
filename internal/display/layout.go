package display

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/elijahimmer/wlrs-bar/internal/config"
)

// layerFor maps a configured layer name. Unknown names get the top layer.
func layerFor(name string) layershell.LayerShellLayer {
	switch name {
	case "background":
		return layershell.LayerShellLayerBackground
	case "bottom":
		return layershell.LayerShellLayerBottom
	case "overlay":
		return layershell.LayerShellLayerOverlay
	default:
		return layershell.LayerShellLayerTop
	}
}

// applyLayer configures the layer surface for the bar settings. The bar is
// anchored to every edge except the one opposite its position, so the
// compositor stretches it across the output.
func applyLayer(window *gtk.Window, cfg config.BarConfig, height int) {
	layershell.SetLayer(window, layerFor(cfg.Layer))
	layershell.SetNamespace(window, cfg.Namespace)
	layershell.SetKeyboardMode(window, layershell.LayerShellKeyboardModeNone)

	bottom := cfg.Position == "bottom"
	layershell.SetAnchor(window, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(window, layershell.LayerShellEdgeRight, true)
	layershell.SetAnchor(window, layershell.LayerShellEdgeTop, !bottom)
	layershell.SetAnchor(window, layershell.LayerShellEdgeBottom, bottom)

	setHeight(window, cfg, height)
}

// setHeight requests a new surface height and keeps the exclusive zone in
// step with it.
func setHeight(window *gtk.Window, cfg config.BarConfig, height int) {
	window.SetSizeRequest(-1, height)
	window.SetDefaultSize(-1, height)
	if cfg.Exclusive {
		layershell.SetExclusiveZone(window, height)
	} else {
		layershell.SetExclusiveZone(window, 0)
	}
}

// primaryMonitor returns the first monitor of the display, or nil.
func primaryMonitor(display *gdk.Display) *gdk.Monitor {
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	return wrapMonitor(monitors.Item(0))
}

// monitorWidth is the logical width of the primary monitor, or 0 when it
// is unknown.
func monitorWidth(display *gdk.Display, logger *slog.Logger) int {
	m := primaryMonitor(display)
	if m == nil {
		logger.Debug("no monitor available for width")
		return 0
	}
	return m.Geometry().Width()
}

// wrapMonitor casts a list item to a gdk.Monitor. gotk4 does not export
// its own wrapper.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
