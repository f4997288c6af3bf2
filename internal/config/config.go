// Package config loads and validates the bar configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppName names the configuration directory.
const AppName = "wlrs-bar"

// Limits on the bar height.
const (
	MinHeight = 1
	MaxHeight = 1024
)

// Config is the whole configuration file.
type Config struct {
	Bar         BarConfig         `toml:"bar"`
	Theme       ThemeConfig       `toml:"theme"`
	Widgets     WidgetsConfig     `toml:"widgets"`
	Clock       ClockConfig       `toml:"clock"`
	Battery     BatteryConfig     `toml:"battery"`
	CPU         UsageConfig       `toml:"cpu"`
	RAM         UsageConfig       `toml:"ram"`
	Volume      VolumeConfig      `toml:"volume"`
	Workspaces  WorkspacesConfig  `toml:"workspaces"`
	UpdatedLast UpdatedLastConfig `toml:"updated_last"`
	Notify      NotifyConfig      `toml:"notify"`
	Debug       DebugConfig       `toml:"debug"`
}

// BarConfig describes the layer surface.
type BarConfig struct {
	Height        int      `toml:"height"`
	Layer         string   `toml:"layer"`          // "background", "bottom", "top" or "overlay"
	Namespace     string   `toml:"namespace"`      // Layer-shell namespace
	FallbackWidth int      `toml:"fallback_width"` // Used when the compositor leaves the width to us
	Exclusive     bool     `toml:"exclusive"`      // Reserve space so windows do not overlap the bar
	Position      string   `toml:"position"`       // "top" or "bottom"
	FrameInterval Duration `toml:"frame_interval"`
}

type ThemeConfig struct {
	Name string `toml:"name"`
}

// WidgetsConfig switches widgets on and off.
type WidgetsConfig struct {
	Clock       bool `toml:"clock"`
	Workspaces  bool `toml:"workspaces"`
	Battery     bool `toml:"battery"`
	CPU         bool `toml:"cpu"`
	RAM         bool `toml:"ram"`
	Volume      bool `toml:"volume"`
	UpdatedLast bool `toml:"updated_last"`
}

type ClockConfig struct {
	ShowSeconds bool `toml:"show_seconds"`
}

// BatteryConfig thresholds are charge fractions in [0, 1].
type BatteryConfig struct {
	Path     string   `toml:"path"`   // Empty auto-detects
	Source   string   `toml:"source"` // "auto", "sysfs" or "upower"
	Warn     float64  `toml:"warn"`
	Critical float64  `toml:"critical"`
	Full     float64  `toml:"full"`
	Interval Duration `toml:"interval"`
}

// UsageConfig configures the CPU and RAM meters.
type UsageConfig struct {
	ShowThreshold float64  `toml:"show_threshold"` // Percent
	Interval      Duration `toml:"interval"`
}

type VolumeConfig struct {
	Interval       Duration `toml:"interval"`
	Step           float64  `toml:"step"`            // Percent per scroll notch
	Backend        string   `toml:"backend"`         // "auto", "wpctl", "pactl" or "amixer"
	FeedbackSound  string   `toml:"feedback_sound"`  // Empty disables
	FeedbackVolume int      `toml:"feedback_volume"` // 0-100
}

type WorkspacesConfig struct {
	SocketDir string `toml:"socket_dir"` // Overrides $XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE
	Max       int    `toml:"max"`        // 0 shows all
}

// UpdatedLastConfig holds the unix time of the last system update. The
// --updated-last flag overrides it.
type UpdatedLastConfig struct {
	Timestamp int64 `toml:"timestamp"`
}

// NotifyConfig controls desktop notifications about the bar itself.
type NotifyConfig struct {
	Enabled         bool     `toml:"enabled"`
	BatteryCritical bool     `toml:"battery_critical"`
	ConfigReload    bool     `toml:"config_reload"`
	MinInterval     Duration `toml:"min_interval"` // Between notifications with the same key
}

// DebugConfig enables layout and logging instrumentation per component.
type DebugConfig struct {
	Outlines   []string `toml:"outlines"`
	Logs       []string `toml:"logs"`
	Damage     bool     `toml:"damage"`
	HeightTest bool     `toml:"height_test"`
}

// OutlinesFor reports whether name should draw debug outlines.
func (d DebugConfig) OutlinesFor(name string) bool { return matches(d.Outlines, name) }

// LogsFor reports whether name should emit debug and trace logs.
func (d DebugConfig) LogsFor(name string) bool { return matches(d.Logs, name) }

func matches(list []string, name string) bool {
	return slices.Contains(list, name) || slices.Contains(list, "all")
}

// Valid option values.
var (
	ValidLayers          = []string{"background", "bottom", "top", "overlay"}
	ValidPositions       = []string{"top", "bottom"}
	ValidBatterySources  = []string{"auto", "sysfs", "upower"}
	ValidVolumeBackends  = []string{"auto", "wpctl", "pactl", "amixer"}
	ValidDebugComponents = []string{
		"all", "clock", "workspaces", "battery", "cpu", "ram", "volume",
		"volume-worker", "updated-last", "bar",
	}
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Bar: BarConfig{
			Height:        30,
			Layer:         "top",
			Namespace:     "bar-wlrs",
			FallbackWidth: 1000,
			Exclusive:     true,
			Position:      "top",
			FrameInterval: Duration(100 * time.Millisecond),
		},
		Theme: ThemeConfig{Name: "rose-pine"},
		Widgets: WidgetsConfig{
			Clock:      true,
			Workspaces: true,
			Battery:    true,
			CPU:        true,
			RAM:        true,
			Volume:     true,
		},
		Clock: ClockConfig{ShowSeconds: true},
		Battery: BatteryConfig{
			Source:   "auto",
			Warn:     0.25,
			Critical: 0.10,
			Full:     0.95,
			Interval: Duration(5 * time.Second),
		},
		CPU: UsageConfig{ShowThreshold: 75, Interval: Duration(time.Second)},
		RAM: UsageConfig{ShowThreshold: 75, Interval: Duration(2 * time.Second)},
		Volume: VolumeConfig{
			Interval:       Duration(250 * time.Millisecond),
			Step:           5,
			Backend:        "auto",
			FeedbackVolume: 80,
		},
		Notify: NotifyConfig{
			Enabled:         true,
			BatteryCritical: true,
			ConfigReload:    true,
			MinInterval:     Duration(5 * time.Second),
		},
	}
}

// Dir returns $XDG_CONFIG_HOME/wlrs-bar.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration at path, or at Path() when path is empty,
// and validates it. A missing file yields the defaults. File values overlay
// the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that overlay their own
// settings before calling Validate.
func Read(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Decode(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Decode decodes TOML over the defaults.
func Decode(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmp, path)
}

// DefaultTOML renders the default configuration.
func DefaultTOML() ([]byte, error) {
	return toml.Marshal(Default())
}

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	oneOf := func(field, value string, valid []string) {
		if !slices.Contains(valid, value) {
			fail(field, "invalid value %q, must be one of: %s", value, strings.Join(valid, ", "))
		}
	}
	percent := func(field string, v float64) {
		if v < 0 || v > 100 {
			fail(field, "must be between 0 and 100, got %v", v)
		}
	}
	positive := func(field string, d Duration) {
		if d <= 0 {
			fail(field, "must be positive, got %s", d.Duration())
		}
	}

	if c.Bar.Height < MinHeight || c.Bar.Height > MaxHeight {
		fail("bar.height", "must be between %d and %d, got %d", MinHeight, MaxHeight, c.Bar.Height)
	}
	if c.Bar.FallbackWidth < 1 {
		fail("bar.fallback_width", "must be positive, got %d", c.Bar.FallbackWidth)
	}
	if c.Bar.Namespace == "" {
		fail("bar.namespace", "must not be empty")
	}
	oneOf("bar.layer", c.Bar.Layer, ValidLayers)
	oneOf("bar.position", c.Bar.Position, ValidPositions)
	positive("bar.frame_interval", c.Bar.FrameInterval)

	if c.Theme.Name == "" {
		fail("theme.name", "must not be empty")
	}

	oneOf("battery.source", c.Battery.Source, ValidBatterySources)
	for _, f := range []struct {
		name string
		v    float64
	}{{"battery.warn", c.Battery.Warn}, {"battery.critical", c.Battery.Critical}, {"battery.full", c.Battery.Full}} {
		if f.v < 0 || f.v > 1 {
			fail(f.name, "must be between 0 and 1, got %v", f.v)
		}
	}
	if c.Battery.Critical > c.Battery.Warn {
		fail("battery.critical", "must not exceed battery.warn (%v > %v)", c.Battery.Critical, c.Battery.Warn)
	}
	positive("battery.interval", c.Battery.Interval)

	percent("cpu.show_threshold", c.CPU.ShowThreshold)
	positive("cpu.interval", c.CPU.Interval)
	percent("ram.show_threshold", c.RAM.ShowThreshold)
	positive("ram.interval", c.RAM.Interval)

	positive("volume.interval", c.Volume.Interval)
	if c.Volume.Step <= 0 || c.Volume.Step > 100 {
		fail("volume.step", "must be between 0 and 100, got %v", c.Volume.Step)
	}
	oneOf("volume.backend", c.Volume.Backend, ValidVolumeBackends)
	if c.Volume.FeedbackVolume < 0 || c.Volume.FeedbackVolume > 100 {
		fail("volume.feedback_volume", "must be between 0 and 100, got %d", c.Volume.FeedbackVolume)
	}

	if c.Workspaces.Max < 0 {
		fail("workspaces.max", "must not be negative, got %d", c.Workspaces.Max)
	}

	if c.Notify.MinInterval < 0 {
		fail("notify.min_interval", "must not be negative, got %s", c.Notify.MinInterval.Duration())
	}

	for _, name := range c.Debug.Outlines {
		oneOf("debug.outlines", name, ValidDebugComponents)
	}
	for _, name := range c.Debug.Logs {
		oneOf("debug.logs", name, ValidDebugComponents)
	}

	return errors.Join(errs...)
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
