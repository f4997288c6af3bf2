package theme

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

// Theme is a resolved palette with its origin.
type Theme struct {
	Name       string
	Path       string // Empty for embedded themes
	Palette    draw.Palette
	ModTime    time.Time
	IsEmbedded bool
}

// header is the part of a theme file read before the palette itself.
type header struct {
	Inherit string `toml:"inherit"`
}

// Source finds the raw TOML of a theme by name.
type Source func(name string) (data []byte, ok bool)

// Parse decodes a palette file. Keys it leaves out are taken from the theme
// named by its inherit key, or from the default palette. The seen set stops
// inheritance cycles.
func Parse(data []byte, lookup Source, seen map[string]bool) (draw.Palette, error) {
	var h header
	if err := toml.Unmarshal(data, &h); err != nil {
		return draw.Palette{}, fmt.Errorf("failed to parse theme: %w", err)
	}

	palette := draw.RosePine
	if h.Inherit != "" {
		if seen == nil {
			seen = make(map[string]bool)
		}
		if seen[h.Inherit] {
			return draw.Palette{}, fmt.Errorf("inheritance cycle through %q", h.Inherit)
		}
		seen[h.Inherit] = true

		parent, ok := lookup(h.Inherit)
		if !ok {
			return draw.Palette{}, fmt.Errorf("inherited theme %q not found", h.Inherit)
		}
		p, err := Parse(parent, lookup, seen)
		if err != nil {
			return draw.Palette{}, fmt.Errorf("inherited theme %q: %w", h.Inherit, err)
		}
		palette = p
	}

	// Unknown keys, inherit among them, are ignored.
	if err := toml.Unmarshal(data, &palette); err != nil {
		return draw.Palette{}, fmt.Errorf("failed to parse theme: %w", err)
	}
	return palette, nil
}

// NewTheme loads a theme file from disk.
func NewTheme(name, path string, lookup Source) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	palette, err := Parse(data, lookup, map[string]bool{name: true})
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:    name,
		Path:    path,
		Palette: palette,
		ModTime: info.ModTime(),
	}, nil
}

// Reload re-reads a file theme when its modification time changed.
func (t *Theme) Reload(lookup Source) (bool, error) {
	if t.IsEmbedded || t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	data, err := os.ReadFile(t.Path)
	if err != nil {
		return false, err
	}
	palette, err := Parse(data, lookup, map[string]bool{t.Name: true})
	if err != nil {
		return false, err
	}

	t.Palette = palette
	t.ModTime = info.ModTime()
	return true, nil
}
