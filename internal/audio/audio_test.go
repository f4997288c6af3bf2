package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/config"
)

// writeWav writes n samples of a quiet square wave.
func writeWav(t *testing.T, path string, n int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	i := 0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		k := 0
		for ; k < len(samples) && i < n; k, i = k+1, i+1 {
			v := 0.1
			if i%20 < 10 {
				v = -0.1
			}
			samples[k] = [2]float64{v, v}
		}
		return k, true
	})

	format := beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, s, format))
}

func TestDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.wav")
	writeWav(t, path, 800)

	buf, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 800, buf.Len())
	assert.Equal(t, beep.SampleRate(8000), buf.Format().SampleRate)

	_, err = Decode(filepath.Join(t.TempDir(), "pop.flac"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0o644))
	_, err = Decode(bad)
	assert.ErrorContains(t, err, "failed to decode sound")
}

func TestPlayer_Cache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.wav")
	writeWav(t, path, 100)

	p := NewPlayer(nil)
	require.NoError(t, p.Preload(path))
	assert.True(t, p.Cached(path))

	p.InvalidateCache(path)
	assert.False(t, p.Cached(path))

	require.NoError(t, p.Preload(""))
	assert.NoError(t, p.Play(""), "empty path is a no-op")
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(2)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())

	assert.InDelta(t, -1, VolumeToExponent(0.5), 1e-9)
	assert.InDelta(t, -2, VolumeToExponent(0.25), 1e-9)
	assert.Equal(t, 0.0, VolumeToExponent(1))
}

func TestPlayer_PlayBufferAppliesVolume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.wav")
	writeWav(t, path, 100)

	p := NewPlayer(nil)
	var got beep.Streamer
	p.play = func(s beep.Streamer) { got = s }
	p.sampleRate = 8000

	buf, err := Decode(path)
	require.NoError(t, err)

	p.playBuffer(buf)
	require.NotNil(t, got)
	_, scaled := got.(*effects.Volume)
	assert.False(t, scaled, "full volume plays the buffer as is")

	p.SetVolume(0.5)
	p.playBuffer(buf)
	v, scaled := got.(*effects.Volume)
	require.True(t, scaled)
	assert.InDelta(t, -1, v.Volume, 1e-9)
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pop.wav")
	writeWav(t, path, 100)

	p := NewPlayer(nil)
	require.NoError(t, p.Preload(path))

	w, err := NewWatcher(p, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch(path))
	w.Start(context.Background())
	defer w.Stop()

	writeWav(t, path, 200)
	require.Eventually(t, func() bool { return !p.Cached(path) }, 5*time.Second, 10*time.Millisecond)
}

func TestFeedback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.wav")
	writeWav(t, path, 100)

	f := NewFeedback(config.VolumeConfig{FeedbackSound: "/does/not/exist.wav", FeedbackVolume: 50}, nil)
	defer f.Stop()
	assert.False(t, f.Enabled())
	assert.NoError(t, f.Play(), "disabled feedback is silent")

	f.UpdateConfig(config.VolumeConfig{FeedbackSound: path, FeedbackVolume: 50})
	assert.True(t, f.Enabled())
	assert.True(t, f.player.Cached(path))
	assert.Equal(t, 0.5, f.player.Volume())
}
