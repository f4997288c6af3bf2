package bar

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
	"github.com/elijahimmer/wlrs-bar/internal/widgets"
)

// block is a widget that paints its area in one colour when dirty.
type block struct {
	widget.NoInput

	name   string
	width  int
	color  draw.Color
	dirty  bool
	area   image.Rectangle
	grow   bool
	clicks int
	closed bool
}

func (b *block) Name() string          { return b.name }
func (b *block) Area() image.Rectangle { return b.area }
func (b *block) HAlign() draw.Align    { return draw.Center }
func (b *block) VAlign() draw.Align    { return draw.Center }
func (b *block) DesiredHeight() int    { return 20 }
func (b *block) DesiredWidth(int) int  { return b.width }
func (b *block) ShouldRedraw() bool    { return b.dirty }
func (b *block) Close() error          { b.closed = true; return nil }

func (b *block) Resize(area image.Rectangle) {
	b.area = area
	b.dirty = true
}

func (b *block) NeedsRelayout() bool {
	g := b.grow
	b.grow = false
	return g
}

func (b *block) Draw(ctx *draw.Context) error {
	ctx.Fill(b.area, b.color)
	ctx.AddDamage(b.area)
	b.dirty = false
	return nil
}

func (b *block) Click(widget.ClickType, image.Point) error {
	b.clicks++
	return nil
}

func newBar(opts Options) (*Bar, *block, *block, *block) {
	l := &block{name: "l", width: 10, color: draw.RosePine.Love}
	c := &block{name: "c", width: 20, color: draw.RosePine.Gold}
	r := &block{name: "r", width: 30, color: draw.RosePine.Foam}
	opts.Palette = draw.RosePine
	opts.Left = []widget.Widget{l}
	opts.Center = []widget.Widget{c}
	opts.Right = []widget.Widget{r}
	return New(logging.Scope{}, opts), l, c, r
}

func TestBar_ResizeLaysOutRegions(t *testing.T) {
	b, l, c, r := newBar(Options{Height: 20, FallbackWidth: 200})
	b.Resize(0, 20)

	assert.Equal(t, image.Rect(0, 0, 200, 20), b.Bounds(), "zero width falls back")
	assert.Equal(t, image.Rect(0, 0, 10, 20), l.area)
	assert.Equal(t, image.Rect(90, 0, 110, 20), c.area)
	assert.Equal(t, image.Rect(170, 0, 200, 20), r.area)
	assert.NotEmpty(t, b.ID().String())
}

func TestBar_FrameDamage(t *testing.T) {
	b, l, _, r := newBar(Options{Height: 20})
	b.Resize(100, 20)

	damage := b.Frame()
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 100, 20)}, damage, "first frame is full")
	assert.Equal(t, draw.RosePine.Surface, colorAt(b, 30, 5), "gaps are bar background")
	assert.Equal(t, draw.RosePine.Love, colorAt(b, 5, 5))

	assert.Empty(t, b.Frame(), "nothing changed")

	r.dirty = true
	r.color = draw.RosePine.Iris
	damage = b.Frame()
	assert.Equal(t, []image.Rectangle{r.area}, damage)
	assert.Equal(t, draw.RosePine.Iris, colorAt(b, 95, 5))
	assert.Equal(t, draw.RosePine.Love, colorAt(b, l.area.Min.X, 5))
}

func TestBar_DamageOutlines(t *testing.T) {
	b, _, _, r := newBar(Options{Height: 20, Damage: true})
	b.Resize(100, 20)
	b.Frame()

	r.dirty = true
	damage := b.Frame()
	assert.Equal(t, draw.RosePine.Love, colorAt(b, r.area.Min.X, 0), "new damage is outlined")
	assert.Contains(t, damage, r.area)

	damage = b.Frame()
	assert.Contains(t, damage, r.area, "the previous outline is erased and damaged")
	assert.Equal(t, draw.RosePine.Surface, colorAt(b, r.area.Min.X, 0))
}

func TestBar_Relayout(t *testing.T) {
	b, l, c, _ := newBar(Options{Height: 20})
	b.Resize(100, 20)
	b.Frame()

	l.width = 25
	l.grow = true
	damage := b.Frame()
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 100, 20)}, damage)
	assert.Equal(t, image.Rect(0, 0, 25, 20), l.area)
	assert.Equal(t, image.Rect(40, 0, 60, 20), c.area)
}

func TestBar_NextHeight(t *testing.T) {
	b, _, _, _ := newBar(Options{Height: 30})
	assert.Equal(t, 30, b.NextHeight())
	assert.Equal(t, 30, b.NextHeight())

	b, _, _, _ = newBar(Options{Height: config.MaxHeight - 1, HeightTest: true})
	assert.Equal(t, config.MaxHeight, b.NextHeight())
	assert.Equal(t, config.MaxHeight-1, b.NextHeight(), "wraps to the configured height")
}

func TestBar_InputAndClose(t *testing.T) {
	b, l, c, r := newBar(Options{Height: 20})
	b.Resize(100, 20)

	require.NoError(t, b.Click(widget.LeftClick, image.Pt(45, 5)))
	require.NoError(t, b.Click(widget.LeftClick, image.Pt(30, 5)), "between regions")
	assert.Equal(t, 1, c.clicks)
	assert.Zero(t, l.clicks)

	require.NoError(t, b.Motion(image.Pt(5, 5)))
	require.NoError(t, b.Motion(image.Pt(95, 5)))
	require.NoError(t, b.MotionLeave(image.Pt(95, 5)))
	require.NoError(t, b.Scroll(0, 1, image.Pt(95, 5)))

	require.NoError(t, b.Close())
	assert.True(t, l.closed)
	assert.True(t, r.closed)
}

func colorAt(b *Bar, x, y int) draw.Color {
	return draw.NewContext(b.Canvas(), false).At(image.Pt(x, y))
}

type fakeBattery struct{ r sensor.BatteryReading }

func (f *fakeBattery) Name() string { return "fake" }
func (f *fakeBattery) Read(context.Context) (sensor.BatteryReading, error) {
	return f.r, nil
}

type fakeCPU float64

func (f fakeCPU) Sample(context.Context) (float64, error) { return float64(f), nil }

func failing[T any](name string) func() (T, error) {
	return func() (T, error) {
		var zero T
		return zero, errors.New(name + " unavailable")
	}
}

func testProbes(battery *fakeBattery) Probes {
	return Probes{
		Battery: func(string, string) (sensor.BatterySource, error) { return battery, nil },
		CPU:     func(context.Context) (sensor.CPUSampler, error) { return fakeCPU(90), nil },
		Memory:  failing[sensor.MemorySampler]("memory"),
		Volume: func(string) (sensor.VolumeBackend, error) {
			return nil, errors.New("no mixer")
		},
		Workspaces: func(string) (widgets.WorkspaceClient, error) {
			return nil, errors.New("not running under Hyprland")
		},
	}
}

func TestBuild_SkipsUnavailableSensors(t *testing.T) {
	cfg := config.Default()
	cfg.Widgets.UpdatedLast = true

	battery := &fakeBattery{r: sensor.BatteryReading{Charge: 0.5, Status: "Discharging"}}
	var critical []float64
	b := Build(context.Background(), nil, cfg, BuildOptions{
		Palette:           draw.RosePine,
		Probes:            testProbes(battery),
		OnBatteryCritical: func(c float64) { critical = append(critical, c) },
	})
	defer b.Close()

	var names []string
	for _, w := range b.Widgets() {
		names = append(names, w.Name())
	}
	assert.Equal(t, []string{"clock", "battery", "cpu"}, names, "updated-last needs a time")

	b.Resize(800, cfg.Bar.Height)
	b.Frame()
	assert.Empty(t, critical)

	snap := b.Snapshot()
	require.NotNil(t, snap.Battery)
	assert.Equal(t, 0.5, snap.Battery.Charge)
	assert.Equal(t, b.ID().String(), snap.Instance)
}

func TestCriticalWatch(t *testing.T) {
	battery := &fakeBattery{r: sensor.BatteryReading{Charge: 0.05, Status: "Discharging"}}
	w := widgets.NewBattery(logging.Scope{}, widgets.BatteryOptions{
		Style:      widgets.Style{Palette: draw.RosePine, DesiredHeight: 20},
		Source:     battery,
		Thresholds: sensor.DefaultBatteryThresholds(),
	})

	var calls []float64
	hook := criticalWatch(w, func(c float64) { calls = append(calls, c) })

	w.ShouldRedraw()
	hook()
	hook()
	assert.Equal(t, []float64{0.05}, calls, "only on entering critical")
}

func TestSources(t *testing.T) {
	cfg := config.Default()
	battery := &fakeBattery{r: sensor.BatteryReading{Charge: 1, Status: "Full"}}

	src, failed := Sources(context.Background(), cfg, testProbes(battery))
	assert.NotNil(t, src.Battery)
	assert.NotNil(t, src.CPU)
	assert.Nil(t, src.Memory)
	assert.Len(t, failed, 3)
	assert.Contains(t, failed, "workspaces")
	assert.Equal(t, 0.10, src.Thresholds.Critical)
}

func TestSources_SystemCPUMeasuresAWindow(t *testing.T) {
	cfg := config.Default()
	probes := testProbes(&fakeBattery{})
	sys := &sensor.SystemCPU{}
	probes.CPU = func(context.Context) (sensor.CPUSampler, error) { return sys, nil }

	src, _ := Sources(context.Background(), cfg, probes)
	require.Same(t, sys, src.CPU)
	assert.Equal(t, sensor.OneShotCPUWindow, sys.Interval)
}
