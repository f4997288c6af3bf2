package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/elijahimmer/wlrs-bar/internal/bar"
	"github.com/elijahimmer/wlrs-bar/internal/theme"
	"github.com/elijahimmer/wlrs-bar/internal/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the bar's readings in the terminal",
	Long: `Show the same readings the bar draws in a terminal view, refreshed
every second and coloured with the configured theme.

Key bindings:
  r   Refresh now
  c   Copy the snapshot as JSON
  y   Copy the snapshot as YAML
  ?   Show help
  q   Quit`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("preview needs a terminal; use 'wlrs-bar status' instead")
	}

	ctx := cmd.Context()
	loader := theme.NewLoader(logger, "")
	loader.LoadTheme(cfg.Theme.Name)

	s := newSnapshotter(ctx, cfg, bar.SystemProbes())
	return tui.Run(ctx, tui.RunOptions{
		Collect:  s.collect,
		Palette:  loader.Palette(),
		Interval: tui.DefaultInterval,
	})
}
