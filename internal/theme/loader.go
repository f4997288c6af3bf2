package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

// Loader resolves theme names to palettes and optionally watches the
// resolved file for edits.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	themesDir string
	theme     *Theme
	watcher   *Watcher
}

// NewLoader creates a loader reading user themes from themesDir. An empty
// themesDir uses ThemesDir.
func NewLoader(logger *slog.Logger, themesDir string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	if themesDir == "" {
		dir, err := ThemesDir()
		if err != nil {
			logger.Warn("failed to get themes directory", "error", err)
		}
		themesDir = dir
	}

	return &Loader{logger: logger, themesDir: themesDir}
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "themes"), nil
}

func (l *Loader) userPath(name string) string {
	if l.themesDir == "" {
		return ""
	}
	return filepath.Join(l.themesDir, name+".toml")
}

// lookup finds theme source in the user directory first, then the
// embedded set.
func (l *Loader) lookup(name string) ([]byte, bool) {
	if p := l.userPath(name); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			return data, true
		}
	}
	return GetEmbeddedTheme(name)
}

// LoadTheme loads a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/wlrs-bar/themes/)
//  2. Embedded/bundled themes
//  3. The default theme, with a warning
func (l *Loader) LoadTheme(name string) *Theme {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == "" {
		name = DefaultThemeName
	}

	if p := l.userPath(name); p != "" {
		if _, err := os.Stat(p); err == nil {
			theme, err := NewTheme(name, p, l.lookup)
			if err == nil {
				l.theme = theme
				l.logger.Info("loaded user theme", "name", name, "path", p)
				return theme
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if theme, err := l.embedded(name); err == nil {
		l.theme = theme
		l.logger.Info("loaded bundled theme", "name", name)
		return theme
	} else if IsEmbeddedTheme(name) {
		l.logger.Warn("failed to parse bundled theme", "theme", name, "error", err)
	}

	l.logger.Warn("theme not found, using default", "theme", name)
	theme, err := l.embedded(DefaultThemeName)
	if err != nil {
		theme = &Theme{Name: DefaultThemeName, Palette: draw.RosePine, IsEmbedded: true}
	}
	l.theme = theme
	return theme
}

func (l *Loader) embedded(name string) (*Theme, error) {
	data, ok := GetEmbeddedTheme(name)
	if !ok {
		return nil, os.ErrNotExist
	}
	palette, err := Parse(data, GetEmbeddedTheme, map[string]bool{name: true})
	if err != nil {
		return nil, err
	}
	return &Theme{Name: name, Palette: palette, IsEmbedded: true}, nil
}

// Theme returns the currently loaded theme, or nil before LoadTheme.
func (l *Loader) Theme() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// Palette returns the current palette, the default one before LoadTheme.
func (l *Loader) Palette() draw.Palette {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.theme == nil {
		return draw.RosePine
	}
	return l.theme.Palette
}

// CurrentTheme returns the name of the currently loaded theme.
func (l *Loader) CurrentTheme() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}

// StartHotReload watches the current theme file. onChange runs on the
// watcher goroutine with the new palette.
func (l *Loader) StartHotReload(ctx context.Context, onChange func(draw.Palette)) {
	l.mu.Lock()
	if l.theme == nil || l.theme.IsEmbedded {
		l.mu.Unlock()
		l.logger.Debug("not starting hot-reload for embedded theme")
		return
	}

	old := l.watcher
	watched := *l.theme
	w := NewWatcher(&watched, l.lookup, l.logger)
	l.watcher = w
	l.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	w.SetChangeCallback(func(p draw.Palette) {
		l.mu.Lock()
		if l.theme != nil && l.theme.Path == watched.Path {
			l.theme.Palette = p
		}
		l.mu.Unlock()
		l.logger.Info("hot-reloaded theme", "name", watched.Name)
		if onChange != nil {
			onChange(p)
		}
	})

	if err := w.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
	}
}

// StopHotReload stops watching the theme for changes.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	// Stop waits for the watch loop, which may be inside the callback
	// taking l.mu.
	if w != nil {
		w.Stop()
	}
}

// ListThemes returns bundled and user theme names without duplicates.
func (l *Loader) ListThemes() []string {
	themes := ListEmbeddedThemes()

	if l.themesDir != "" {
		entries, err := os.ReadDir(l.themesDir)
		if err != nil {
			l.logger.Debug("failed to read themes directory", "error", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".toml" {
				continue
			}
			if n := strings.TrimSuffix(name, ".toml"); !slices.Contains(themes, n) {
				themes = append(themes, n)
			}
		}
	}
	return themes
}
