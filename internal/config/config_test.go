package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30, cfg.Bar.Height)
	assert.Equal(t, "bar-wlrs", cfg.Bar.Namespace)
	assert.Equal(t, 1000, cfg.Bar.FallbackWidth)
	assert.Equal(t, "top", cfg.Bar.Layer)
	assert.Equal(t, "rose-pine", cfg.Theme.Name)
	assert.True(t, cfg.Widgets.Clock)
	assert.False(t, cfg.Widgets.UpdatedLast)
	assert.Equal(t, 0.25, cfg.Battery.Warn)
	assert.Equal(t, 0.10, cfg.Battery.Critical)
	assert.Equal(t, 0.95, cfg.Battery.Full)
	assert.Equal(t, time.Second, cfg.CPU.Interval.Duration())
	assert.Equal(t, 2*time.Second, cfg.RAM.Interval.Duration())
	assert.Equal(t, 75.0, cfg.CPU.ShowThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Volume.Interval.Duration())
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[bar]
height = 24
position = "bottom"

[theme]
name = "rose-pine-moon"

[widgets]
battery = false
updated_last = true

[clock]
show_seconds = false

[cpu]
show_threshold = 50
interval = "500ms"

[volume]
backend = "pactl"
step = 2.5

[workspaces]
max = 10

[updated_last]
timestamp = 1700000000

[debug]
outlines = ["clock", "battery"]
logs = ["all"]
damage = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Bar.Height)
	assert.Equal(t, "bottom", cfg.Bar.Position)
	assert.Equal(t, "bar-wlrs", cfg.Bar.Namespace, "unset values keep their defaults")
	assert.Equal(t, "rose-pine-moon", cfg.Theme.Name)
	assert.False(t, cfg.Widgets.Battery)
	assert.True(t, cfg.Widgets.UpdatedLast)
	assert.True(t, cfg.Widgets.Clock)
	assert.False(t, cfg.Clock.ShowSeconds)
	assert.Equal(t, 50.0, cfg.CPU.ShowThreshold)
	assert.Equal(t, 500*time.Millisecond, cfg.CPU.Interval.Duration())
	assert.Equal(t, "pactl", cfg.Volume.Backend)
	assert.Equal(t, 2.5, cfg.Volume.Step)
	assert.Equal(t, 10, cfg.Workspaces.Max)
	assert.Equal(t, int64(1700000000), cfg.UpdatedLast.Timestamp)
	assert.True(t, cfg.Debug.Damage)

	assert.True(t, cfg.Debug.OutlinesFor("clock"))
	assert.False(t, cfg.Debug.OutlinesFor("cpu"))
	assert.True(t, cfg.Debug.LogsFor("volume-worker"), "all matches every component")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bar\nheight = "), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"height zero", func(c *Config) { c.Bar.Height = 0 }, "bar.height"},
		{"height too big", func(c *Config) { c.Bar.Height = MaxHeight + 1 }, "bar.height"},
		{"layer", func(c *Config) { c.Bar.Layer = "middle" }, "bar.layer"},
		{"position", func(c *Config) { c.Bar.Position = "left" }, "bar.position"},
		{"namespace", func(c *Config) { c.Bar.Namespace = "" }, "bar.namespace"},
		{"fallback width", func(c *Config) { c.Bar.FallbackWidth = 0 }, "bar.fallback_width"},
		{"frame interval", func(c *Config) { c.Bar.FrameInterval = 0 }, "bar.frame_interval"},
		{"theme", func(c *Config) { c.Theme.Name = "" }, "theme.name"},
		{"battery source", func(c *Config) { c.Battery.Source = "acpi" }, "battery.source"},
		{"battery range", func(c *Config) { c.Battery.Full = 1.5 }, "battery.full"},
		{"battery order", func(c *Config) { c.Battery.Critical = 0.5 }, "battery.critical"},
		{"cpu threshold", func(c *Config) { c.CPU.ShowThreshold = 101 }, "cpu.show_threshold"},
		{"ram interval", func(c *Config) { c.RAM.Interval = -1 }, "ram.interval"},
		{"volume step", func(c *Config) { c.Volume.Step = 0 }, "volume.step"},
		{"volume backend", func(c *Config) { c.Volume.Backend = "oss" }, "volume.backend"},
		{"feedback volume", func(c *Config) { c.Volume.FeedbackVolume = 120 }, "volume.feedback_volume"},
		{"workspaces max", func(c *Config) { c.Workspaces.Max = -1 }, "workspaces.max"},
		{"notify interval", func(c *Config) { c.Notify.MinInterval = -1 }, "notify.min_interval"},
		{"debug component", func(c *Config) { c.Debug.Logs = []string{"nope"} }, "debug.logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Bar.Height = 0
	cfg.Volume.Step = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bar.height")
	assert.Contains(t, err.Error(), "volume.step")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Bar.Height = 40
	cfg.Debug.Outlines = []string{"ram"}
	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.Bar.Height)
	if diff := cmp.Diff(cfg, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestDefaultTOML(t *testing.T) {
	data, err := DefaultTOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "bar-wlrs")

	cfg, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("default TOML does not parse back to the defaults (-want +got):\n%s", diff)
	}
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1500")))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("2m")))
	assert.Equal(t, 2*time.Minute, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("soon")))

	text, err := Duration(250 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "250ms", string(text))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sounds/pop.wav"), ExpandPath("~/sounds/pop.wav"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/wlrs-bar/config.toml", p)
}

func TestRead_DoesNotValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bar]\nheight = 0\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "bar.height")

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Bar.Height)
	cfg.Bar.Height = 32
	assert.NoError(t, cfg.Validate())
}
