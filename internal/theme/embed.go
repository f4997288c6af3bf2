// Package theme loads bar palettes. Bundled palettes are embedded and a
// file of the same name under the user's themes directory overrides one.
package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// EmbeddedThemes contains all bundled palette files.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultThemeName is the palette used when nothing else resolves.
const DefaultThemeName = "rose-pine"

// BundledThemes lists all embedded theme names.
var BundledThemes = []string{"rose-pine", "rose-pine-moon", "rose-pine-dawn"}

// GetEmbeddedTheme returns the TOML source of a bundled theme.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns names of all embedded themes.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return BundledThemes
	}

	var themes []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		themes = append(themes, strings.TrimSuffix(name, ".toml"))
	}
	slices.Sort(themes)
	return themes
}

func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}
