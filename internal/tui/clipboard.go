package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elijahimmer/wlrs-bar/internal/sensor"
)

// copyText copies text to the system clipboard.
func copyText(text string) error {
	cmd := detectClipboardCommand()
	if cmd == "" {
		return fmt.Errorf("no clipboard command available")
	}

	parts := strings.Fields(cmd)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}

// detectClipboardCommand returns the first clipboard tool found, Wayland
// first.
func detectClipboardCommand() string {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return "wl-copy"
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return "xclip -selection clipboard"
	}
	if _, err := exec.LookPath("xsel"); err == nil {
		return "xsel --clipboard --input"
	}
	return ""
}

// encodeSnapshot renders a snapshot as "json" or "yaml".
func encodeSnapshot(snap sensor.Snapshot, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		return string(data), err
	case "yaml":
		data, err := yaml.Marshal(snap)
		return string(data), err
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
