package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		configPath  string
		height      int
		updatedLast int64
	}
	logger *slog.Logger
)

// rootCmd runs the bar when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "wlrs-bar",
	Short: "A Wayland status bar",
	Long: `wlrs-bar is a status bar for wlroots compositors.

It shows Hyprland workspaces, a clock, battery charge, volume, CPU and
RAM usage, and how long ago the system was last updated. Configuration is
read from ~/.config/wlrs-bar/config.toml and reloaded when it changes.

Log verbosity comes from --verbose, else BAR_WLRS_LOG, else RUST_LOG.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = loadConfig(cmd)
		return err
	},
	RunE: runBar,
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if logger != nil {
			logger.Error("wlrs-bar failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/wlrs-bar/config.toml)")
	rootCmd.PersistentFlags().IntVar(&globalOpts.height, "height", 0,
		"Bar height in pixels (overrides bar.height)")
	rootCmd.PersistentFlags().Int64Var(&globalOpts.updatedLast, "updated-last", 0,
		"Unix time of the last system update; enables the updated-last widget")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelInfo
	if lvl, ok := logging.LevelFromEnv(os.Getenv); ok {
		level = lvl
	}
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	logger = logging.New(os.Stderr, level)
	slog.SetDefault(logger)
}

// configPath is the file in use, from --config or the default location.
func configPath() (string, error) {
	if globalOpts.configPath != "" {
		return config.ExpandPath(globalOpts.configPath), nil
	}
	return config.Path()
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}
	c, err := config.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	logger.Debug("config loaded", "path", path)
	return c, nil
}

// applyFlags overlays the flags that were set on c.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("height") {
		c.Bar.Height = globalOpts.height
	}
	if flags.Changed("updated-last") {
		c.UpdatedLast.Timestamp = globalOpts.updatedLast
		c.Widgets.UpdatedLast = true
	}
}

// updatedLastTime converts the configured timestamp. Zero stays zero.
func updatedLastTime(c *config.Config) time.Time {
	if c.UpdatedLast.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(c.UpdatedLast.Timestamp, 0)
}
