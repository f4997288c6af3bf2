package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

func TestEmbeddedThemes(t *testing.T) {
	assert.Equal(t, []string{"rose-pine", "rose-pine-dawn", "rose-pine-moon"}, ListEmbeddedThemes())
	for _, name := range BundledThemes {
		assert.True(t, IsEmbeddedTheme(name), name)
	}
	assert.False(t, IsEmbeddedTheme("solarized"))
}

func TestEmbeddedRosePineMatchesBuiltin(t *testing.T) {
	data, ok := GetEmbeddedTheme(DefaultThemeName)
	require.True(t, ok)

	p, err := Parse(data, GetEmbeddedTheme, nil)
	require.NoError(t, err)
	assert.Equal(t, draw.RosePine, p)
}

func TestParse_Inherit(t *testing.T) {
	data, ok := GetEmbeddedTheme("rose-pine-moon")
	require.True(t, ok)

	p, err := Parse(data, GetEmbeddedTheme, nil)
	require.NoError(t, err)
	assert.Equal(t, draw.RGB(0x23, 0x21, 0x36), p.Base)
	assert.Equal(t, draw.RosePine.Love, p.Love, "unset keys come from the parent")
}

func TestParse_Errors(t *testing.T) {
	lookup := func(name string) ([]byte, bool) {
		switch name {
		case "a":
			return []byte(`inherit = "b"`), true
		case "b":
			return []byte(`inherit = "a"`), true
		}
		return nil, false
	}

	_, err := Parse([]byte(`inherit = "a"`), lookup, nil)
	assert.ErrorContains(t, err, "cycle")

	_, err = Parse([]byte(`inherit = "missing"`), lookup, nil)
	assert.ErrorContains(t, err, "not found")

	_, err = Parse([]byte(`base = "#12"`), lookup, nil)
	assert.Error(t, err)
}

func TestParse_Alpha(t *testing.T) {
	p, err := Parse([]byte(`surface = "#11223380"`), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, draw.Color{R: 0x11, G: 0x22, B: 0x33, A: 0x80}, p.Surface)
}

func TestLoader_ResolutionOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rose-pine-dawn.toml"), []byte(`love = "#ff0000"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.toml"), []byte("inherit = \"rose-pine-dawn\"\ngold = \"#00ff00\""), 0o644))

	l := NewLoader(nil, dir)
	assert.Equal(t, draw.RosePine, l.Palette(), "default before loading")

	th := l.LoadTheme("rose-pine-dawn")
	assert.False(t, th.IsEmbedded, "user file overrides bundled theme")
	assert.Equal(t, draw.RGB(0xff, 0, 0), th.Palette.Love)

	th = l.LoadTheme("mine")
	assert.Equal(t, "mine", l.CurrentTheme())
	assert.Equal(t, draw.RGB(0, 0xff, 0), th.Palette.Gold)
	assert.Equal(t, draw.RGB(0xff, 0, 0), th.Palette.Love, "inherits the user override")

	th = l.LoadTheme("rose-pine-moon")
	assert.True(t, th.IsEmbedded)

	assert.Contains(t, l.ListThemes(), "mine")
	assert.Len(t, l.ListThemes(), 4)
}

func TestLoader_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte(`base = 12`), 0o644))

	l := NewLoader(nil, dir)
	th := l.LoadTheme("nope")
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.Equal(t, draw.RosePine, th.Palette)

	th = l.LoadTheme("broken")
	assert.Equal(t, DefaultThemeName, th.Name)
}

func TestLoader_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.toml")
	require.NoError(t, os.WriteFile(path, []byte(`love = "#010203"`), 0o644))

	l := NewLoader(nil, dir)
	l.LoadTheme("live")

	changes := make(chan draw.Palette, 1)
	l.StartHotReload(context.Background(), func(p draw.Palette) { changes <- p })
	defer l.StopHotReload()

	require.NoError(t, os.WriteFile(path, []byte(`love = "#040506"`), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changes:
		assert.Equal(t, draw.RGB(4, 5, 6), p.Love)
		assert.Equal(t, draw.RGB(4, 5, 6), l.Palette().Love)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestWatcher_IgnoresEmbedded(t *testing.T) {
	w := NewWatcher(&Theme{Name: "rose-pine", IsEmbedded: true}, GetEmbeddedTheme, nil)
	require.NoError(t, w.Start(context.Background()))
	assert.False(t, w.IsRunning())
	w.Stop()
}
