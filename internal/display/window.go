package display

import (
	"image"
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/elijahimmer/wlrs-bar/internal/bar"
	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

// Window is the bar's layer-shell surface. All methods must be called on
// the GTK main loop.
type Window struct {
	logger  *slog.Logger
	cfg     config.BarConfig
	display *gdk.Display

	window *gtk.Window
	area   *gtk.DrawingArea

	bar     *bar.Bar
	surface *cairo.Surface
	height  int

	tick    glib.SourceHandle
	ticking bool

	pointer image.Point

	// surfaceGone is set once the compositor or user closed the window.
	surfaceGone bool
	closed      bool
}

// NewWindow creates the layer surface for b. The window is shown by
// Present.
func NewWindow(app *gtk.Application, cfg *config.Config, b *bar.Bar, logger *slog.Logger) (*Window, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if b == nil {
		return nil, &Error{Message: "no bar to display"}
	}
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &Error{Message: "no display available"}
	}
	if !layershell.IsSupported() {
		return nil, &Error{Message: "compositor does not support wlr-layer-shell"}
	}

	w := &Window{
		logger:  logger,
		cfg:     cfg.Bar,
		display: display,
		bar:     b,
		height:  cfg.Bar.Height,
	}

	w.window = gtk.NewWindow()
	w.window.SetApplication(app)
	w.window.SetDecorated(false)
	w.window.SetResizable(false)

	layershell.InitForWindow(w.window)
	if m := primaryMonitor(display); m != nil {
		layershell.SetMonitor(w.window, m)
	}
	applyLayer(w.window, w.cfg, w.height)

	w.area = gtk.NewDrawingArea()
	w.area.SetHExpand(true)
	w.area.SetVExpand(true)
	w.area.SetDrawFunc(w.paint)
	w.area.ConnectResize(w.resize)
	w.window.SetChild(w.area)

	w.connectInput()
	w.window.ConnectCloseRequest(func() bool {
		w.logger.Info("layer surface closed")
		w.surfaceGone = true
		w.stopTick()
		return false
	})

	logger.Info("layer surface created",
		"layer", w.cfg.Layer,
		"position", w.cfg.Position,
		"namespace", w.cfg.Namespace,
		"height", w.height,
		"instance", b.ID().String(),
	)
	return w, nil
}

// Present shows the window and starts the frame timer.
func (w *Window) Present() {
	w.window.Present()
	w.startTick()
}

// Bar returns the bar currently on screen.
func (w *Window) Bar() *bar.Bar { return w.bar }

// UpdateConfig re-applies the surface settings and swaps in b, which was
// built from the same configuration. The previous bar is closed.
func (w *Window) UpdateConfig(cfg *config.Config, b *bar.Bar) {
	w.stopTick()

	old := w.bar
	w.bar = b
	w.cfg = cfg.Bar
	w.height = cfg.Bar.Height
	applyLayer(w.window, w.cfg, w.height)

	if old != nil && old != b {
		if err := old.Close(); err != nil {
			w.logger.Warn("closing previous bar", "error", err)
		}
	}

	if w.surface != nil {
		w.resize(w.area.Width(), w.area.Height())
	}
	w.logger.Info("display configuration applied", "instance", b.ID().String())
	w.startTick()
}

// Close stops the frame timer, closes the bar and destroys the window.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.stopTick()
	err := w.bar.Close()
	if !w.surfaceGone {
		w.window.Close()
	}
	return err
}

func (w *Window) startTick() {
	if w.ticking {
		return
	}
	interval := config.Default().Bar.FrameInterval.Duration()
	if d := w.cfg.FrameInterval.Duration(); d > 0 {
		interval = d
	}
	w.tick = glib.TimeoutAdd(uint(interval.Milliseconds()), func() bool {
		w.frame()
		return true
	})
	w.ticking = true
}

func (w *Window) stopTick() {
	if !w.ticking {
		return
	}
	glib.SourceRemove(w.tick)
	w.ticking = false
}

// resize follows the drawing area. A zero width from the compositor is
// replaced by the monitor width when one is known; the bar falls back to
// its configured width otherwise.
func (w *Window) resize(width, height int) {
	if width <= 0 {
		width = monitorWidth(w.display, w.logger)
	}
	w.bar.Resize(width, height)

	bounds := w.bar.Bounds()
	w.surface = cairo.CreateImageSurface(cairo.FormatARGB32, bounds.Dx(), bounds.Dy())
	w.logger.Debug("surface reallocated", "width", bounds.Dx(), "height", bounds.Dy())
	w.frame()
}

// frame renders one bar frame and copies its damage into the surface.
func (w *Window) frame() {
	if w.surface == nil {
		return
	}

	if h := w.bar.NextHeight(); h != w.height {
		w.height = h
		setHeight(w.window, w.cfg, h)
	}

	damage := w.bar.Frame()
	if len(damage) == 0 {
		return
	}

	canvas := w.bar.Canvas()
	w.surface.Flush()
	data := w.surface.Data()
	stride := w.surface.Stride()
	for _, r := range damage {
		r = r.Intersect(canvas.Bounds())
		if r.Empty() {
			continue
		}
		draw.CopyToARGB(data, stride, canvas, r)
		w.surface.MarkDirtyRectangle(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	}
	w.area.QueueDraw()
}

func (w *Window) paint(_ *gtk.DrawingArea, cr *cairo.Context, _, _ int) {
	if w.surface == nil {
		return
	}
	cr.SetSourceSurface(w.surface, 0, 0)
	cr.Paint()
}

func (w *Window) connectInput() {
	click := gtk.NewGestureClick()
	click.SetButton(0)
	click.ConnectReleased(func(nPress int, x, y float64) {
		button := widget.ClickTypeFromGTK(click.CurrentButton())
		w.report("click", w.bar.Click(button, point(x, y)))
	})
	w.area.AddController(click)

	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) {
		w.pointer = point(x, y)
		w.report("motion", w.bar.Motion(w.pointer))
	})
	motion.ConnectMotion(func(x, y float64) {
		w.pointer = point(x, y)
		w.report("motion", w.bar.Motion(w.pointer))
	})
	motion.ConnectLeave(func() {
		w.report("leave", w.bar.MotionLeave(w.pointer))
	})
	w.area.AddController(motion)

	scroll := gtk.NewEventControllerScroll(gtk.EventControllerScrollVertical)
	scroll.ConnectScroll(func(dx, dy float64) bool {
		w.report("scroll", w.bar.Scroll(dx, dy, w.pointer))
		return true
	})
	w.area.AddController(scroll)
}

func (w *Window) report(event string, err error) {
	if err != nil {
		w.logger.Warn("input handler failed", "event", event, "error", err)
	}
}

func point(x, y float64) image.Point {
	return image.Pt(int(x), int(y))
}
