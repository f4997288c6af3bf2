package widgets

import (
	"context"
	"image"
	"slices"
	"strconv"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

// WorkspaceClient is what the widget needs from the compositor.
type WorkspaceClient interface {
	sensor.WorkspaceQuerier
	Dispatch(ctx context.Context, args ...string) error
	Events(ctx context.Context, fn func(sensor.WorkspaceEvent)) error
}

type WorkspacesOptions struct {
	Style
	Client WorkspaceClient

	// Max limits how many workspaces are shown. Zero shows all.
	Max int

	WorkerLogs bool

	// RetryDelay is the wait before reconnecting to a dropped event
	// socket. Defaults to two seconds.
	RetryDelay time.Duration
}

// WorkspaceLabel is the text shown for a workspace id: Greek capitals for
// 1 to 24, decimal otherwise.
func WorkspaceLabel(id int) string {
	switch {
	case id >= 1 && id <= 17:
		return string(rune('Α' - 1 + id))
	case id >= 18 && id <= 24:
		// U+03A2 between rho and sigma is unassigned.
		return string(rune('Α' + id))
	default:
		return strconv.Itoa(id)
	}
}

type workspaceMsg struct {
	reset  bool
	ids    []int
	active int
	event  sensor.WorkspaceEvent
}

// Workspaces shows one box per Hyprland workspace and highlights the
// active one.
type Workspaces struct {
	log  logging.Scope
	opts WorkspacesOptions

	ids     []int
	active  int
	hovered int
	boxes   []*draw.TextBox

	area     image.Rectangle
	clear    bool
	relayout bool

	msgs   chan workspaceMsg
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorkspaces starts a worker that follows the compositor's events.
func NewWorkspaces(log logging.Scope, opts WorkspacesOptions) *Workspaces {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	log.Info("initializing", "height", opts.DesiredHeight)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspaces{
		log:    log,
		opts:   opts,
		msgs:   make(chan workspaceMsg, 64),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go w.work(ctx, log.Child("worker").WithLog(opts.WorkerLogs))
	return w
}

func (w *Workspaces) work(ctx context.Context, log logging.Scope) {
	defer close(w.done)
	log.Debug("worker starting")

	send := func(msg workspaceMsg) {
		select {
		case w.msgs <- msg:
		case <-ctx.Done():
		}
	}

	for {
		if msg, err := w.seed(ctx); err != nil {
			log.Warn("failed to query workspaces", "error", err)
		} else {
			log.Trace("seeded", "ids", msg.ids, "active", msg.active)
			send(msg)
		}

		err := w.opts.Client.Events(ctx, func(ev sensor.WorkspaceEvent) {
			log.Trace("event", "kind", ev.Kind, "id", ev.ID)
			send(workspaceMsg{event: ev})
		})
		if ctx.Err() != nil {
			log.Debug("worker told to close")
			return
		}

		log.Warn("event stream ended, reconnecting", "error", err, "delay", w.opts.RetryDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.opts.RetryDelay):
		}
	}
}

func (w *Workspaces) seed(ctx context.Context) (workspaceMsg, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	ids, err := w.opts.Client.Workspaces(ctx)
	if err != nil {
		return workspaceMsg{}, err
	}
	active, err := w.opts.Client.ActiveWorkspace(ctx)
	if err != nil {
		return workspaceMsg{}, err
	}
	return workspaceMsg{reset: true, ids: ids, active: active}, nil
}

// IDs returns the workspaces currently shown.
func (w *Workspaces) IDs() []int  { return slices.Clone(w.ids) }
func (w *Workspaces) Active() int { return w.active }

func (w *Workspaces) Name() string          { return w.log.Name() }
func (w *Workspaces) Area() image.Rectangle { return w.area }
func (w *Workspaces) HAlign() draw.Align    { return w.opts.HAlign }
func (w *Workspaces) VAlign() draw.Align    { return w.opts.VAlign }
func (w *Workspaces) DesiredHeight() int    { return w.opts.DesiredHeight }

// DesiredWidth gives every workspace a square.
func (w *Workspaces) DesiredWidth(height int) int {
	return len(w.shown()) * height
}

func (w *Workspaces) Resize(area image.Rectangle) {
	w.area = area
	w.clear = true
	widget.StackStart(w.log, w.boxes, area)
}

func (w *Workspaces) NeedsRelayout() bool {
	r := w.relayout
	w.relayout = false
	return r
}

// ShouldRedraw drains the worker's messages without blocking.
func (w *Workspaces) ShouldRedraw() bool {
	changed := false
drain:
	for {
		select {
		case msg := <-w.msgs:
			changed = w.apply(msg) || changed
		default:
			break drain
		}
	}

	if changed {
		w.rebuild()
	}

	redraw := w.clear
	for _, b := range w.boxes {
		redraw = b.ShouldRedraw() || redraw
	}
	return redraw
}

// apply folds one message into the state and reports whether the set of
// workspaces changed.
func (w *Workspaces) apply(msg workspaceMsg) bool {
	if msg.reset {
		ids := slices.Clone(msg.ids)
		slices.Sort(ids)
		ids = slices.Compact(ids)
		w.active = msg.active
		if slices.Equal(ids, w.ids) {
			w.recolor()
			return false
		}
		w.ids = ids
		return true
	}

	id := msg.event.ID
	i, found := slices.BinarySearch(w.ids, id)
	switch msg.event.Kind {
	case sensor.WorkspaceCreate:
		if found {
			return false
		}
		w.ids = slices.Insert(w.ids, i, id)
		return true
	case sensor.WorkspaceDestroy:
		if !found {
			return false
		}
		w.ids = slices.Delete(w.ids, i, i+1)
		if w.hovered == id {
			w.hovered = 0
		}
		return true
	default:
		w.active = id
		if !found {
			w.ids = slices.Insert(w.ids, i, id)
			return true
		}
		w.recolor()
		return false
	}
}

func (w *Workspaces) shown() []int {
	if w.opts.Max > 0 && len(w.ids) > w.opts.Max {
		return w.ids[:w.opts.Max]
	}
	return w.ids
}

func (w *Workspaces) colors(id int) (fg, bg draw.Color) {
	switch {
	case id == w.active:
		return w.opts.Palette.Text, w.opts.Palette.Pine
	case id == w.hovered:
		return w.opts.Palette.Rose, w.opts.Palette.HighlightMed
	default:
		return w.opts.Palette.Rose, w.opts.BG()
	}
}

// rebuild makes one box per shown workspace and asks for a relayout.
func (w *Workspaces) rebuild() {
	shown := w.shown()
	w.log.Debug("workspaces changed", "ids", shown, "active", w.active)

	h := w.opts.DesiredHeight
	w.boxes = w.boxes[:0]
	for _, id := range shown {
		fg, bg := w.colors(id)
		w.boxes = append(w.boxes, draw.NewTextBox(w.log.Child(strconv.Itoa(id)), draw.TextBoxOptions{
			Text:              WorkspaceLabel(id),
			FG:                fg,
			BG:                bg,
			DesiredTextHeight: textHeight(h),
			DesiredWidth:      h,
			FitCells:          2,
			HAlign:            draw.Center,
			Outline:           w.opts.Outline,
		}))
	}
	w.relayout = true
	w.Resize(w.area)
}

func (w *Workspaces) recolor() {
	for i, id := range w.shown() {
		if i >= len(w.boxes) {
			return
		}
		fg, bg := w.colors(id)
		w.boxes[i].SetFG(fg)
		w.boxes[i].SetBG(bg)
	}
}

func (w *Workspaces) Draw(ctx *draw.Context) error {
	full := ctx.FullRedraw || w.clear
	if full {
		ctx.Fill(w.area, w.opts.BG())
		ctx.AddDamage(w.area)
		w.clear = false
	}
	for _, b := range w.boxes {
		if full || b.ShouldRedraw() {
			if err := b.Draw(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workspaces) at(p image.Point) (int, bool) {
	for i, b := range w.boxes {
		if b.Contains(p) {
			return w.shown()[i], true
		}
	}
	return 0, false
}

func (w *Workspaces) dispatch(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return w.opts.Client.Dispatch(ctx, args...)
}

// Click switches to the workspace under the pointer.
func (w *Workspaces) Click(button widget.ClickType, p image.Point) error {
	id, ok := w.at(p)
	if !ok || button != widget.LeftClick {
		return nil
	}
	w.log.Debug("switching workspace", "id", id)
	return w.dispatch("workspace", strconv.Itoa(id))
}

// Scroll moves to the next or previous workspace on the monitor.
func (w *Workspaces) Scroll(_, dy float64, _ image.Point) error {
	switch {
	case dy > 0:
		return w.dispatch("workspace", "e+1")
	case dy < 0:
		return w.dispatch("workspace", "e-1")
	}
	return nil
}

func (w *Workspaces) Motion(p image.Point) error {
	id, _ := w.at(p)
	if id != w.hovered {
		w.hovered = id
		w.recolor()
	}
	return nil
}

func (w *Workspaces) MotionLeave(image.Point) error {
	if w.hovered != 0 {
		w.hovered = 0
		w.recolor()
	}
	return nil
}

// Close stops the worker and waits for it.
func (w *Workspaces) Close() error {
	w.cancel()
	<-w.done
	return nil
}
