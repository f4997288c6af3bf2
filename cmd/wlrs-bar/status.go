package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elijahimmer/wlrs-bar/internal/bar"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
)

var statusOpts struct {
	format string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print one reading of every sensor",
	Long: `Read every enabled sensor once and print the result without opening
a display. Sensors that are unavailable are listed with their error.

Formats:
  text  human readable (default)
  json  the snapshot as JSON
  yaml  the snapshot as YAML`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "text",
		"Output format (text, json, yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	s := newSnapshotter(ctx, cfg, bar.SystemProbes())
	return writeSnapshot(os.Stdout, s.collect(ctx), statusOpts.format)
}

// writeSnapshot encodes snap in the named format.
func writeSnapshot(w io.Writer, snap sensor.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	case "text", "":
		_, err := io.WriteString(w, formatText(snap))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func formatText(snap sensor.Snapshot) string {
	var b strings.Builder
	line := func(name, format string, args ...any) {
		fmt.Fprintf(&b, "%-11s "+format+"\n", append([]any{name + ":"}, args...)...)
	}

	if ws := snap.Workspaces; ws != nil {
		ids := make([]string, len(ws.IDs))
		for i, id := range ws.IDs {
			ids[i] = fmt.Sprint(id)
			if id == ws.Active {
				ids[i] = "[" + ids[i] + "]"
			}
		}
		line("workspaces", "%s", strings.Join(ids, " "))
	}
	if snap.CPU != nil {
		line("cpu", "%.0f%%", *snap.CPU)
	}
	if snap.RAM != nil {
		if m := snap.Memory; m != nil {
			line("ram", "%.0f%% (%s of %s)", *snap.RAM, humanize.IBytes(m.Used()), humanize.IBytes(m.Total))
		} else {
			line("ram", "%.0f%%", *snap.RAM)
		}
	}
	if bat := snap.Battery; bat != nil {
		line("battery", "%.0f%% %s (%s, via %s)", bat.Charge*100, bat.Status, bat.Class, bat.Source)
	}
	if v := snap.Volume; v != nil {
		muted := ""
		if v.Muted {
			muted = " muted"
		}
		line("volume", "%.0f%%%s", v.Percent, muted)
	}
	if snap.UpdatedLast != "" {
		line("updated", "%s", snap.UpdatedLast)
	}
	for _, name := range slices.Sorted(maps.Keys(snap.Errors)) {
		line(name, "unavailable: %s", snap.Errors[name])
	}
	return b.String()
}
